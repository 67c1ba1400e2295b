// Package vector implements persistent vector.
//
// This is a Go clone of Clojure's PersistentVector type
// (https://github.com/clojure/clojure/blob/master/src/jvm/clojure/lang/PersistentVector.java).
// For an introduction to the internals, see
// https://hypirion.com/musings/understanding-persistent-vector-pt-1.
package vector

const (
	chunkBits  = 5
	nodeSize   = 1 << chunkBits
	tailMaxLen = nodeSize
	chunkMask  = nodeSize - 1
)

// Vector is a persistent sequential container. It supports O(1) lookup by
// index, modification by index, and insertion and removal at the end. Every
// modification returns a new Vector sharing most of its structure with the
// old one, which stays valid. The zero value is an empty vector.
type Vector[T any] struct {
	count int
	// height of the tree structure, defined to be 0 when root is a leaf.
	height uint
	root   *node[T]
	tail   []T
}

// node is a node in the vector tree. Leaves use values, other nodes use
// children; either way the slice has nodeSize elements.
type node[T any] struct {
	children []*node[T]
	values   []T
}

func newInner[T any]() *node[T] {
	return &node[T]{children: make([]*node[T], nodeSize)}
}

func leafFromSlice[T any](s []T) *node[T] {
	values := make([]T, nodeSize)
	copy(values, s)
	return &node[T]{values: values}
}

func (n *node[T]) clone() *node[T] {
	if n.values != nil {
		return &node[T]{values: append([]T(nil), n.values...)}
	}
	return &node[T]{children: append([]*node[T](nil), n.children...)}
}

// Len returns the length of the vector.
func (v Vector[T]) Len() int {
	return v.count
}

// treeSize returns the number of elements stored in the tree (as opposed to the
// tail).
func (v Vector[T]) treeSize() int {
	if v.count < tailMaxLen {
		return 0
	}
	return ((v.count - 1) >> chunkBits) << chunkBits
}

// Index returns the i-th element of the vector, and whether it exists.
func (v Vector[T]) Index(i int) (T, bool) {
	if i < 0 || i >= v.count {
		var zero T
		return zero, false
	}
	return v.sliceFor(i)[i&chunkMask], true
}

// sliceFor returns the slice where the i-th element is stored. The index must
// be in bound.
func (v Vector[T]) sliceFor(i int) []T {
	if i >= v.treeSize() {
		return v.tail
	}
	n := v.root
	for shift := v.height * chunkBits; shift > 0; shift -= chunkBits {
		n = n.children[(i>>shift)&chunkMask]
	}
	return n.values
}

// Assoc returns a vector with the i-th element replaced. If i equals the
// length of the vector, it is equivalent to Conj. It panics if i is out of
// that range.
func (v Vector[T]) Assoc(i int, val T) Vector[T] {
	if i < 0 || i > v.count {
		panic("vector: index out of range")
	} else if i == v.count {
		return v.Conj(val)
	}
	if i >= v.treeSize() {
		newTail := append([]T(nil), v.tail...)
		newTail[i&chunkMask] = val
		return Vector[T]{v.count, v.height, v.root, newTail}
	}
	return Vector[T]{v.count, v.height, doAssoc(v.height, v.root, i, val), v.tail}
}

// doAssoc returns an almost identical tree, with the i-th element replaced by
// val.
func doAssoc[T any](height uint, n *node[T], i int, val T) *node[T] {
	m := n.clone()
	if height == 0 {
		m.values[i&chunkMask] = val
	} else {
		sub := (i >> (height * chunkBits)) & chunkMask
		m.children[sub] = doAssoc(height-1, m.children[sub], i, val)
	}
	return m
}

// Conj returns a vector with val appended.
func (v Vector[T]) Conj(val T) Vector[T] {
	// Room in tail?
	if v.count-v.treeSize() < tailMaxLen {
		newTail := make([]T, len(v.tail)+1)
		copy(newTail, v.tail)
		newTail[len(v.tail)] = val
		return Vector[T]{v.count + 1, v.height, v.root, newTail}
	}
	// Full tail; push into tree.
	tailNode := leafFromSlice(v.tail)
	newHeight := v.height
	var newRoot *node[T]
	if v.root == nil {
		newRoot = tailNode
	} else if (v.count >> chunkBits) > (1 << (v.height * chunkBits)) {
		// Overflow root.
		newRoot = newInner[T]()
		newRoot.children[0] = v.root
		newRoot.children[1] = newPath(v.height, tailNode)
		newHeight++
	} else {
		newRoot = v.pushTail(v.height, v.root, tailNode)
	}
	return Vector[T]{v.count + 1, newHeight, newRoot, []T{val}}
}

// pushTail returns a tree with tail appended.
func (v Vector[T]) pushTail(height uint, n *node[T], tail *node[T]) *node[T] {
	if height == 0 {
		return tail
	}
	idx := ((v.count - 1) >> (height * chunkBits)) & chunkMask
	m := n.clone()
	if child := n.children[idx]; child == nil {
		m.children[idx] = newPath(height-1, tail)
	} else {
		m.children[idx] = v.pushTail(height-1, child, tail)
	}
	return m
}

// newPath creates a left-branching tree of specified height and leaf.
func newPath[T any](height uint, leaf *node[T]) *node[T] {
	if height == 0 {
		return leaf
	}
	ret := newInner[T]()
	ret.children[0] = newPath(height-1, leaf)
	return ret
}

// Pop returns a vector with the last element removed. It panics if the vector
// is empty.
func (v Vector[T]) Pop() Vector[T] {
	switch v.count {
	case 0:
		panic("vector: Pop of empty vector")
	case 1:
		return Vector[T]{}
	}
	if v.count-v.treeSize() > 1 {
		return Vector[T]{v.count - 1, v.height, v.root, v.tail[:len(v.tail)-1:len(v.tail)-1]}
	}
	newTail := v.sliceFor(v.count - 2)
	if v.height == 0 {
		// The tree was a single leaf, which becomes the tail.
		return Vector[T]{v.count - 1, 0, nil, newTail}
	}
	newRoot := v.popTail(v.height, v.root)
	newHeight := v.height
	if newRoot.children[1] == nil {
		newRoot = newRoot.children[0]
		newHeight--
	}
	return Vector[T]{v.count - 1, newHeight, newRoot, newTail}
}

// popTail returns a new tree with the last leaf removed, or nil if nothing is
// left.
func (v Vector[T]) popTail(level uint, n *node[T]) *node[T] {
	idx := ((v.count - 2) >> (level * chunkBits)) & chunkMask
	if level > 1 {
		newChild := v.popTail(level-1, n.children[idx])
		if newChild == nil && idx == 0 {
			return nil
		}
		m := n.clone()
		m.children[idx] = newChild
		return m
	} else if idx == 0 {
		return nil
	}
	m := n.clone()
	m.children[idx] = nil
	return m
}

// ForEach calls f on each element in order, stopping early if f returns false.
func (v Vector[T]) ForEach(f func(T) bool) {
	for i := 0; i < v.count; i += nodeSize {
		s := v.sliceFor(i)
		end := min(len(s), v.count-i)
		for _, val := range s[:end] {
			if !f(val) {
				return
			}
		}
	}
}

// Slice returns the elements in order.
func (v Vector[T]) Slice() []T {
	s := make([]T, 0, v.count)
	v.ForEach(func(val T) bool {
		s = append(s, val)
		return true
	})
	return s
}
