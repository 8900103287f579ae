// Package sport composes one taxonomy, player registry, engine and
// interpreter per enabled sport. The registry is built once at startup with
// ordinary code and owns every engine instance; there is no global state.
package sport

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/player"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
	"github.com/depthchart-hub/depth-chart-hub/internal/interface/interpreter"
)

// QueueSuffix is appended to the sport id to form the default channel name,
// e.g. "nfl_depth_chart_queue".
const QueueSuffix = "_depth_chart_queue"

// ErrDuplicateSport is returned when two definitions share an id.
var ErrDuplicateSport = errors.New("sport: duplicate sport id")

// ErrUnknownSport is returned when a sport has no taxonomy.
var ErrUnknownSport = errors.New("sport: unknown sport")

// Definition declares one sport to run.
type Definition struct {
	ID       string
	Queue    string             // defaults to QueueName(ID)
	Taxonomy *position.Taxonomy // defaults to the built-in taxonomy for ID
	Seed     []string           // player names registered up front
}

// QueueName returns the default channel name for a sport.
func QueueName(prefix, id string) string {
	return prefix + id + QueueSuffix
}

// Sport is the runtime bundle for one sport.
type Sport struct {
	ID          string
	Queue       string
	Taxonomy    *position.Taxonomy
	Engine      *depthchart.Engine
	Interpreter *interpreter.Interpreter
}

// Registry maps sport ids to their runtime bundles.
type Registry struct {
	sports map[string]*Sport
	order  []string
}

// Build creates the registry. Every interpreter writes to out and receives
// opts.
func Build(defs []Definition, out io.Writer, opts ...interpreter.Option) (*Registry, error) {
	r := &Registry{sports: make(map[string]*Sport, len(defs))}
	for _, def := range defs {
		id := strings.ToLower(strings.TrimSpace(def.ID))
		if _, dup := r.sports[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSport, id)
		}

		tax := def.Taxonomy
		if tax == nil {
			builtin, ok := position.ForSport(id)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownSport, id)
			}
			tax = builtin
		}

		queue := def.Queue
		if queue == "" {
			queue = QueueName("", id)
		}

		engine := depthchart.NewEngine(tax, player.NewRegistry(def.Seed...))
		r.sports[id] = &Sport{
			ID:          id,
			Queue:       queue,
			Taxonomy:    tax,
			Engine:      engine,
			Interpreter: interpreter.New(id, engine, out, opts...),
		}
		r.order = append(r.order, id)
	}
	return r, nil
}

// Get returns a sport by id (case-insensitive).
func (r *Registry) Get(id string) (*Sport, bool) {
	s, ok := r.sports[strings.ToLower(strings.TrimSpace(id))]
	return s, ok
}

// All returns the sports in definition order.
func (r *Registry) All() []*Sport {
	out := make([]*Sport, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sports[id])
	}
	return out
}

// IDs returns the sorted sport ids.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	sort.Strings(ids)
	return ids
}

// Len returns the number of sports.
func (r *Registry) Len() int {
	return len(r.order)
}
