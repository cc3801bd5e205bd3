package trie

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Get returns the value stored under key. The bool reports whether the key
// was found. Get does not allocate.
func (t Trie[T]) Get(key string) (T, bool) {
	n := t.root
	for i := 0; i < len(key); i++ {
		if n = n.child(key[i]); n == nil {
			break
		}
	}
	if !n.hasValue() {
		var zero T
		return zero, false
	}
	return *n.value, true
}

// Put returns a new trie in which key maps to value. Only the nodes on the
// path from the root to key are allocated; all other subtrees are shared
// with t. The empty key addresses the root itself.
func (t Trie[T]) Put(key string, value T) Trie[T] {
	// path[d] is the existing node at depth d, or nil once the key leaves
	// the existing structure.
	path := make([]*node[T], len(key)+1)
	path[0] = t.root
	for d := 0; d < len(key); d++ {
		path[d+1] = path[d].child(key[d])
	}

	size := t.size
	if !path[len(key)].hasValue() {
		size++
	}

	n := path[len(key)].withValue(&value)
	for d := len(key) - 1; d >= 0; d-- {
		n = path[d].withChild(key[d], n)
	}
	return Trie[T]{root: n, size: size}
}

// Remove returns a new trie without key. Branches left with neither a value
// nor children are pruned. If key is not present the receiver is returned
// as is.
func (t Trie[T]) Remove(key string) Trie[T] {
	if t.root == nil {
		return t
	}

	// First pass: collect the path and find the cut point, the shallowest
	// depth from which every node down to the leaf becomes dead once the
	// value is gone. An ineligible node resets the search below it.
	path := make([]*node[T], len(key)+1)
	path[0] = t.root
	cut := -1
	for d := 0; ; d++ {
		last := d == len(key)
		if path[d].prunable(last) {
			if cut < 0 {
				cut = d
			}
		} else {
			cut = -1
		}
		if last {
			break
		}
		if path[d+1] = path[d].child(key[d]); path[d+1] == nil {
			return t
		}
	}
	leaf := path[len(key)]
	if !leaf.hasValue() {
		return t
	}
	if cut == 0 {
		return New[T]()
	}

	// Second pass: rebuild from just above the cut point (or from the leaf
	// when nothing is pruned) up to the root.
	var n *node[T]
	top := len(key)
	if cut > 0 {
		top = cut - 1
		n = path[top].withoutChild(key[top])
	} else {
		n = leaf.withoutValue()
	}
	for d := top - 1; d >= 0; d-- {
		n = path[d].withChild(key[d], n)
	}
	return Trie[T]{root: n, size: t.size - 1}
}

// Len returns the number of keys stored in the trie.
func (t Trie[T]) Len() int {
	return t.size
}

// IsEmpty reports whether the trie holds no keys.
func (t Trie[T]) IsEmpty() bool {
	return t.root == nil
}

// String renders the trie one node per line, children in ascending byte
// order.
func (t Trie[T]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Trie{len: %d}", t.size)
	if t.root != nil {
		writeNode(&sb, t.root, "(root)", 0)
	}
	return sb.String()
}

func writeNode[T any](sb *strings.Builder, n *node[T], label string, depth int) {
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(label)
	if n.value != nil {
		fmt.Fprintf(sb, " = %v", *n.value)
	}
	for _, b := range slices.Sorted(maps.Keys(n.children)) {
		writeNode(sb, n.children[b], fmt.Sprintf("%q", b), depth+1)
	}
}
