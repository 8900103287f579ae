package player

import "strings"

// Registry resolves player names to stable ids and creates players on first
// reference.
type Registry struct {
	players []Player
	byName  map[string]int // folded name -> index into players
	maxID   ID
}

// NewRegistry creates a Registry, optionally pre-registering the seed names in
// order. Blank seed names are skipped.
func NewRegistry(seed ...string) *Registry {
	r := &Registry{
		players: make([]Player, 0, len(seed)),
		byName:  make(map[string]int, len(seed)),
	}
	for _, name := range seed {
		if strings.TrimSpace(name) == "" {
			continue
		}
		r.AddOrGet(name)
	}
	return r
}

// AddOrGet returns the player registered under name (case-insensitive) or
// creates one with the next id. It never fails.
func (r *Registry) AddOrGet(name string) Player {
	if p, ok := r.Find(name); ok {
		return p
	}

	r.maxID++
	p := Player{ID: r.maxID, Name: name}
	r.byName[fold(name)] = len(r.players)
	r.players = append(r.players, p)
	return p
}

// Find looks a player up by name without creating it.
func (r *Registry) Find(name string) (Player, bool) {
	idx, ok := r.byName[fold(name)]
	if !ok {
		return Player{}, false
	}
	return r.players[idx], true
}

// Exists reports whether id was issued by this registry.
func (r *Registry) Exists(id ID) bool {
	return id.IsValid() && id <= r.maxID
}

// All returns a copy of every registered player in id order.
func (r *Registry) All() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	return len(r.players)
}

// fold normalizes a name for lookup. strings.ToLower is not enough for
// characters with special case mappings, so both directions are applied.
func fold(name string) string {
	return strings.ToLower(strings.ToUpper(name))
}
