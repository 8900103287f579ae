package depthchart

import (
	"fmt"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/player"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/shared"
)

// Engine manages the depth chart of a single sport.
type Engine struct {
	registry *player.Registry
	taxonomy *position.Taxonomy
	slots    map[position.Tag]Slot
}

// NewEngine creates an engine with one empty slot per taxonomy tag. A nil
// registry is replaced with an empty one.
func NewEngine(taxonomy *position.Taxonomy, registry *player.Registry) *Engine {
	if registry == nil {
		registry = player.NewRegistry()
	}
	slots := make(map[position.Tag]Slot, taxonomy.Len())
	for _, tag := range taxonomy.Tags() {
		slots[tag] = Slot{}
	}
	return &Engine{
		registry: registry,
		taxonomy: taxonomy,
		slots:    slots,
	}
}

// Registry returns the player registry backing the engine.
func (e *Engine) Registry() *player.Registry {
	return e.registry
}

// Taxonomy returns the engine's position taxonomy.
func (e *Engine) Taxonomy() *position.Taxonomy {
	return e.taxonomy
}

// AddPosition places a player in tag's slot.
//
// Any existing entry of the player in that slot is removed first. When depth
// is within [0, len(slot)] the entry is inserted at that index, otherwise it
// is appended. Unknown player ids fail with shared.ErrUnknownPlayer.
func (e *Engine) AddPosition(id player.ID, tag position.Tag, depth *int) error {
	if !e.registry.Exists(id) {
		return shared.Detail(shared.ErrUnknownPlayer,
			fmt.Sprintf("Player '%d' does not exist. Add the player first.", id))
	}
	slot, ok := e.slots[tag]
	if !ok {
		return shared.Detail(shared.ErrUnknownPosition,
			fmt.Sprintf("Requested value '%s' was not found in %s positions.", tag, e.taxonomy.Sport()))
	}

	if i := slot.IndexOf(id); i >= 0 {
		slot = append(slot[:i], slot[i+1:]...)
	}

	entry := NewEntry(id, tag, depth)
	if depth != nil && *depth >= 0 && *depth <= len(slot) {
		slot = append(slot, Entry{})
		copy(slot[*depth+1:], slot[*depth:])
		slot[*depth] = entry
	} else {
		slot = append(slot, entry)
	}

	e.slots[tag] = slot
	return nil
}

// RemovePosition removes the named player from tag's slot. Unknown names,
// players absent from the slot and tags outside the taxonomy are no-ops.
func (e *Engine) RemovePosition(name string, tag position.Tag) {
	p, ok := e.registry.Find(name)
	if !ok {
		return
	}
	slot, ok := e.slots[tag]
	if !ok {
		return
	}
	if i := slot.IndexOf(p.ID); i >= 0 {
		e.slots[tag] = append(slot[:i], slot[i+1:]...)
	}
}

// FullChart returns a deep copy of every slot.
func (e *Engine) FullChart() Chart {
	chart := Chart{
		Positions: e.taxonomy.Tags(),
		Slots:     make(map[position.Tag]Slot, len(e.slots)),
	}
	for tag, slot := range e.slots {
		chart.Slots[tag] = slot.clone()
	}
	return chart
}

// PlayersUnder returns the entries ranked strictly below the named player in
// tag's slot. The result is empty when the player is unknown or not in the
// slot.
func (e *Engine) PlayersUnder(name string, tag position.Tag) []Entry {
	p, ok := e.registry.Find(name)
	if !ok {
		return []Entry{}
	}
	slot := e.slots[tag]
	i := slot.IndexOf(p.ID)
	if i < 0 {
		return []Entry{}
	}
	return slot[i+1:].clone()
}

// Slot returns a copy of one slot.
func (e *Engine) Slot(tag position.Tag) Slot {
	return e.slots[tag].clone()
}
