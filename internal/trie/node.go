package trie

import "maps"

// node is a single trie vertex. A node is never modified once it has been
// built; every change produces a new node that shares the untouched children.
type node[T any] struct {
	// children maps the next key byte to the child node
	children map[byte]*node[T]

	// value is nil unless a key ends at this node
	value *T
}

// hasValue reports whether a key ends at n.
func (n *node[T]) hasValue() bool {
	return n != nil && n.value != nil
}

// child returns the child for b, or nil. It is safe to call on a nil node.
func (n *node[T]) child(b byte) *node[T] {
	if n == nil {
		return nil
	}
	return n.children[b]
}

// withValue returns a copy of n carrying value. A nil n yields a
// value-only node.
func (n *node[T]) withValue(value *T) *node[T] {
	if n == nil {
		return &node[T]{value: value}
	}
	return &node[T]{children: n.children, value: value}
}

// withoutValue returns a children-only copy of n.
func (n *node[T]) withoutValue() *node[T] {
	return &node[T]{children: n.children}
}

// withChild returns a copy of n whose entry for b points at c. A nil n
// yields a node with c as its only child.
func (n *node[T]) withChild(b byte, c *node[T]) *node[T] {
	if n == nil {
		return &node[T]{children: map[byte]*node[T]{b: c}}
	}
	children := make(map[byte]*node[T], len(n.children)+1)
	maps.Copy(children, n.children)
	children[b] = c
	return &node[T]{children: children, value: n.value}
}

// withoutChild returns a copy of n with the entry for b dropped.
func (n *node[T]) withoutChild(b byte) *node[T] {
	children := maps.Clone(n.children)
	delete(children, b)
	if len(children) == 0 {
		children = nil
	}
	return &node[T]{children: children, value: n.value}
}

// prunable reports whether n turns into dead weight once the key passing
// through it is removed. For the final node of the key that means it has no
// children left; for an inner node it means the deletion path is its only
// child and it stores no value of its own.
func (n *node[T]) prunable(last bool) bool {
	if last {
		return len(n.children) == 0
	}
	return n.value == nil && len(n.children) == 1
}

// Trie is an immutable handle to a root node. The zero value is an empty
// trie. Put and Remove never modify the receiver; they return a new Trie
// that shares every unmodified subtree with the old one, so any number of
// versions can be held and queried concurrently.
type Trie[T any] struct {
	root *node[T]
	size int
}

// New creates a new empty trie
func New[T any]() Trie[T] {
	return Trie[T]{}
}
