// Package player contains the player identity model of the depth chart hub.
//
// A Player is created the first time its name is referenced and keeps the same
// id for the lifetime of its Registry. Names are matched case-insensitively,
// so "Bob", "bob" and "BOB" resolve to one player.
//
// # Usage
//
//	reg := player.NewRegistry()
//	bob := reg.AddOrGet("Bob")    // Player{ID: 1, Name: "Bob"}
//	same := reg.AddOrGet("BOB")   // same identity, ID 1
//	_, ok := reg.Find("alice")    // false, Find never creates
//
// Registries are not safe for concurrent use; callers serialize access per
// sport (see the interpreter package).
package player
