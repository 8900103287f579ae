// Package position declares the closed set of position tags each sport accepts.
package position

import (
	"fmt"
	"strings"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/shared"
)

// Tag is one position identifier, e.g. "QB". Tags are case-sensitive.
type Tag string

// String implements fmt.Stringer.
func (t Tag) String() string {
	return string(t)
}

// Taxonomy is the ordered, closed set of tags valid for one sport.
// It is immutable after construction and safe to share between goroutines.
type Taxonomy struct {
	sport string
	tags  []Tag
	index map[Tag]int
}

// New declares a taxonomy. Tags keep their declaration order; empty or
// duplicated tags are rejected.
func New(sport string, tags ...string) (*Taxonomy, error) {
	if strings.TrimSpace(sport) == "" {
		return nil, shared.Detail(shared.ErrUnknownPosition, "taxonomy: sport is required")
	}
	if len(tags) == 0 {
		return nil, shared.Detail(shared.ErrUnknownPosition, fmt.Sprintf("taxonomy %s: no positions declared", sport))
	}

	t := &Taxonomy{
		sport: sport,
		tags:  make([]Tag, 0, len(tags)),
		index: make(map[Tag]int, len(tags)),
	}
	for _, raw := range tags {
		if strings.TrimSpace(raw) == "" {
			return nil, shared.Detail(shared.ErrUnknownPosition, fmt.Sprintf("taxonomy %s: empty position", sport))
		}
		tag := Tag(raw)
		if _, dup := t.index[tag]; dup {
			return nil, shared.Detail(shared.ErrUnknownPosition, fmt.Sprintf("taxonomy %s: duplicate position %q", sport, raw))
		}
		t.index[tag] = len(t.tags)
		t.tags = append(t.tags, tag)
	}
	return t, nil
}

// MustNew is like New but panics on an invalid declaration. Intended for the
// built-in taxonomies below.
func MustNew(sport string, tags ...string) *Taxonomy {
	t, err := New(sport, tags...)
	if err != nil {
		panic(err)
	}
	return t
}

// Sport returns the sport identifier the taxonomy belongs to.
func (t *Taxonomy) Sport() string {
	return t.sport
}

// Parse matches text exactly against the declared tags.
func (t *Taxonomy) Parse(text string) (Tag, error) {
	tag := Tag(text)
	if _, ok := t.index[tag]; !ok {
		return "", shared.Detail(shared.ErrUnknownPosition,
			fmt.Sprintf("Requested value '%s' was not found in %s positions.", text, t.sport))
	}
	return tag, nil
}

// Contains reports whether tag belongs to the taxonomy.
func (t *Taxonomy) Contains(tag Tag) bool {
	_, ok := t.index[tag]
	return ok
}

// Tags returns the declared tags in order.
func (t *Taxonomy) Tags() []Tag {
	out := make([]Tag, len(t.tags))
	copy(out, t.tags)
	return out
}

// Len returns the number of declared tags.
func (t *Taxonomy) Len() int {
	return len(t.tags)
}
