// Package rbmap implements a persistent ordered map backed by a red-black tree.
package rbmap

// Map is a persistent ordered map. It is immutable; Insert returns a new map
// that shares all untouched subtrees with the old one, so any number of
// goroutines may read a Map concurrently.
//
// The zero value is not usable; create maps with New.
type Map[K, V any] struct {
	root *node[K, V]
	size int
	cmp  func(a, b K) int
}

type color bool

const (
	red   color = false
	black color = true
)

type node[K, V any] struct {
	color       color
	left, right *node[K, V]
	key         K
	value       V
}

// New returns an empty map ordered by cmp, which must be a total order that
// returns 0 only for keys that should be treated as identical.
func New[K, V any](cmp func(a, b K) int) Map[K, V] {
	return Map[K, V]{cmp: cmp}
}

// Len returns the number of entries in the map.
func (m Map[K, V]) Len() int { return m.size }

// Find returns the value associated with k and whether there is one.
func (m Map[K, V]) Find(k K) (V, bool) {
	n := m.root
	for n != nil {
		switch c := m.cmp(k, n.key); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n.value, true
		}
	}
	var zero V
	return zero, false
}

// Contains reports whether the map has an entry for k.
func (m Map[K, V]) Contains(k K) bool {
	_, ok := m.Find(k)
	return ok
}

// Insert returns a map in which k is associated with v, replacing any previous
// association of k.
func (m Map[K, V]) Insert(k K, v V) Map[K, V] {
	root, added := m.insert(m.root, k, v)
	if root.color == red {
		root = &node[K, V]{black, root.left, root.right, root.key, root.value}
	}
	size := m.size
	if added {
		size++
	}
	return Map[K, V]{root, size, m.cmp}
}

func (m Map[K, V]) insert(n *node[K, V], k K, v V) (*node[K, V], bool) {
	if n == nil {
		return &node[K, V]{red, nil, nil, k, v}, true
	}
	switch c := m.cmp(k, n.key); {
	case c < 0:
		left, added := m.insert(n.left, k, v)
		return balance(n.color, left, n.key, n.value, n.right), added
	case c > 0:
		right, added := m.insert(n.right, k, v)
		return balance(n.color, n.left, n.key, n.value, right), added
	default:
		return &node[K, V]{n.color, n.left, n.right, k, v}, false
	}
}

// balance rebuilds a node after an insertion below it, eliminating a red node
// with a red child directly under a black node.
func balance[K, V any](c color, l *node[K, V], k K, v V, r *node[K, V]) *node[K, V] {
	if c == black {
		switch {
		case isRed(l) && isRed(l.left):
			return &node[K, V]{red,
				blacken(l.left),
				&node[K, V]{black, l.right, r, k, v},
				l.key, l.value}
		case isRed(l) && isRed(l.right):
			return &node[K, V]{red,
				&node[K, V]{black, l.left, l.right.left, l.key, l.value},
				&node[K, V]{black, l.right.right, r, k, v},
				l.right.key, l.right.value}
		case isRed(r) && isRed(r.left):
			return &node[K, V]{red,
				&node[K, V]{black, l, r.left.left, k, v},
				&node[K, V]{black, r.left.right, r.right, r.key, r.value},
				r.left.key, r.left.value}
		case isRed(r) && isRed(r.right):
			return &node[K, V]{red,
				&node[K, V]{black, l, r.left, k, v},
				blacken(r.right),
				r.key, r.value}
		}
	}
	return &node[K, V]{c, l, r, k, v}
}

func isRed[K, V any](n *node[K, V]) bool {
	return n != nil && n.color == red
}

func blacken[K, V any](n *node[K, V]) *node[K, V] {
	return &node[K, V]{black, n.left, n.right, n.key, n.value}
}

// ForEach calls f on every entry in key order, stopping early if f returns
// false.
func (m Map[K, V]) ForEach(f func(k K, v V) bool) {
	forEach(m.root, f)
}

func forEach[K, V any](n *node[K, V], f func(K, V) bool) bool {
	if n == nil {
		return true
	}
	return forEach(n.left, f) && f(n.key, n.value) && forEach(n.right, f)
}
