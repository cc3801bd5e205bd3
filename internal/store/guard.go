package store

import "github.com/kumarlokesh/sysd/exercises/cow-trie/internal/trie"

// Guard is the result of a successful Store.Get. It holds the version the
// value was read from, so the value stays valid for as long as the guard is
// reachable, no matter what writers do afterwards.
//
// Values of reference types (slices, maps, pointers) are shared with the
// trie and must be treated as read-only.
type Guard[T any] struct {
	snapshot trie.Trie[T]
	value    T
}

// Value returns the guarded value.
func (g Guard[T]) Value() T {
	return g.value
}

// Snapshot returns the trie version the guarded value was read from.
func (g Guard[T]) Snapshot() trie.Trie[T] {
	return g.snapshot
}
