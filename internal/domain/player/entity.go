package player

import "fmt"

// ID identifies a player within one sport. IDs start at 1.
type ID int

// IsValid reports whether the id could have been issued by a Registry.
func (id ID) IsValid() bool {
	return id > 0
}

// Player is a named participant that can be placed on a depth chart.
type Player struct {
	ID   ID
	Name string
}

// String returns a short representation used in logs.
func (p Player) String() string {
	return fmt.Sprintf("%s#%d", p.Name, p.ID)
}
