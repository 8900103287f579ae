// Package depthchart contains the per-sport depth chart engine.
//
// An Engine owns one ordered Slot per position of its taxonomy. The index of
// an Entry within a Slot is its rank: 0 is the starter. Slots are created
// when the engine is built and are never removed, even when empty.
//
// The engine does no locking. Callers must serialize operations against one
// engine; different engines share nothing and may run in parallel.
package depthchart

import (
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/player"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
)

// Entry is a player's placement in one Slot. Depth is the depth that was
// requested when the entry was added and may be nil; the authoritative rank
// is the entry's index in the Slot.
type Entry struct {
	PlayerID player.ID
	Position position.Tag
	Depth    *int
}

// NewEntry builds an Entry, copying depth so callers cannot mutate it later.
func NewEntry(id player.ID, tag position.Tag, depth *int) Entry {
	return Entry{PlayerID: id, Position: tag, Depth: copyDepth(depth)}
}

func copyDepth(depth *int) *int {
	if depth == nil {
		return nil
	}
	d := *depth
	return &d
}

func (e Entry) clone() Entry {
	e.Depth = copyDepth(e.Depth)
	return e
}

// Slot is the ordered list of entries for one position.
type Slot []Entry

// IndexOf returns the index of id in the slot, or -1.
func (s Slot) IndexOf(id player.ID) int {
	for i, e := range s {
		if e.PlayerID == id {
			return i
		}
	}
	return -1
}

// PlayerIDs returns the ids in rank order.
func (s Slot) PlayerIDs() []player.ID {
	ids := make([]player.ID, len(s))
	for i, e := range s {
		ids[i] = e.PlayerID
	}
	return ids
}

func (s Slot) clone() Slot {
	out := make(Slot, len(s))
	for i, e := range s {
		out[i] = e.clone()
	}
	return out
}

// Chart is a snapshot of a whole depth chart. Positions keeps taxonomy
// order; Slots holds one (possibly empty) slot per position.
type Chart struct {
	Positions []position.Tag
	Slots     map[position.Tag]Slot
}

// Slot returns the slot for tag, nil if the tag is not part of the chart.
func (c Chart) Slot(tag position.Tag) Slot {
	return c.Slots[tag]
}

// NonEmpty returns the positions that have at least one entry, in order.
func (c Chart) NonEmpty() []position.Tag {
	out := make([]position.Tag, 0, len(c.Positions))
	for _, tag := range c.Positions {
		if len(c.Slots[tag]) > 0 {
			out = append(out, tag)
		}
	}
	return out
}

// IsEmpty reports whether no position has an entry.
func (c Chart) IsEmpty() bool {
	return len(c.NonEmpty()) == 0
}
