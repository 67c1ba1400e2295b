// Package hashmap implements a persistent hash array mapped trie.
package hashmap

const (
	chunkBits = 5
	nodeCap   = 1 << chunkBits
	chunkMask = nodeCap - 1
)

// Key is the interface that keys of the hashmap needs to satisfy. Equal keys
// must have equal hashes.
type Key interface {
	Hash() uint32
	Equal(other any) bool
}

// Map is a persistent associative data structure mapping keys to values. It
// is immutable, and supports near-O(1) operations to create modified version of
// the map that shares the underlying data structure. Because it is immutable,
// all of its methods are safe for concurrent use.
type Map[K Key, V any] struct {
	count int
	root  node[K, V]
}

// Empty returns an empty map.
func Empty[K Key, V any]() Map[K, V] {
	return Map[K, V]{0, &bitmapNode[K, V]{}}
}

// Len returns the length of the map.
func (m Map[K, V]) Len() int {
	return m.count
}

// Index returns the value associated with the given key, and whether there is
// one.
func (m Map[K, V]) Index(k K) (V, bool) {
	if m.root == nil {
		var zero V
		return zero, false
	}
	return m.root.find(0, k.Hash(), k)
}

// Assoc returns an almost identical map, with the given key associated with
// the given value.
func (m Map[K, V]) Assoc(k K, v V) Map[K, V] {
	root := m.root
	if root == nil {
		root = &bitmapNode[K, V]{}
	}
	newRoot, added := root.assoc(0, k.Hash(), k, v)
	newCount := m.count
	if added {
		newCount++
	}
	return Map[K, V]{newCount, newRoot}
}

// node is an interface for all nodes in the hash map tree.
type node[K Key, V any] interface {
	// assoc adds a new pair of key and value. It returns the new node, and
	// whether the key did not exist before (i.e. a new pair has been added,
	// instead of replaced).
	assoc(shift, hash uint32, k K, v V) (node[K, V], bool)
	// find finds the value for a key. It returns the found value (if any) and
	// whether such a pair exists.
	find(shift, hash uint32, k K) (V, bool)
}

// arrayNode stores all of its children in an array.
type arrayNode[K Key, V any] struct {
	nChildren int
	children  [nodeCap]node[K, V]
}

func (n *arrayNode[K, V]) withNewChild(i uint32, newChild node[K, V], d int) *arrayNode[K, V] {
	newChildren := n.children
	newChildren[i] = newChild
	return &arrayNode[K, V]{n.nChildren + d, newChildren}
}

func (n *arrayNode[K, V]) assoc(shift, hash uint32, k K, v V) (node[K, V], bool) {
	idx := chunk(shift, hash)
	child := n.children[idx]
	if child == nil {
		newChild, _ := (&bitmapNode[K, V]{}).assoc(shift+chunkBits, hash, k, v)
		return n.withNewChild(idx, newChild, 1), true
	}
	newChild, added := child.assoc(shift+chunkBits, hash, k, v)
	return n.withNewChild(idx, newChild, 0), added
}

func (n *arrayNode[K, V]) find(shift, hash uint32, k K) (V, bool) {
	child := n.children[chunk(shift, hash)]
	if child == nil {
		var zero V
		return zero, false
	}
	return child.find(shift+chunkBits, hash, k)
}

type bitmapNode[K Key, V any] struct {
	bitmap  uint32
	entries []mapEntry[K, V]
}

// mapEntry is a map entry. In a bitmapNode, an entry with a non-nil child
// stands for a subtree instead of a key-value pair.
type mapEntry[K Key, V any] struct {
	key   K
	value V
	child node[K, V]
}

func chunk(shift, hash uint32) uint32 {
	return (hash >> shift) & chunkMask
}

func bitpos(shift, hash uint32) uint32 {
	return 1 << chunk(shift, hash)
}

func index(bitmap, bit uint32) uint32 {
	return popCount(bitmap & (bit - 1))
}

const (
	m1  uint32 = 0x55555555
	m2         = 0x33333333
	m4         = 0x0f0f0f0f
	m8         = 0x00ff00ff
	m16        = 0x0000ffff
)

func popCount(u uint32) uint32 {
	u = (u & m1) + ((u >> 1) & m1)
	u = (u & m2) + ((u >> 2) & m2)
	u = (u & m4) + ((u >> 4) & m4)
	u = (u & m8) + ((u >> 8) & m8)
	u = (u & m16) + ((u >> 16) & m16)
	return u
}

func createNode[K Key, V any](shift uint32, k1 K, v1 V, h2 uint32, k2 K, v2 V) node[K, V] {
	h1 := k1.Hash()
	if h1 == h2 {
		return &collisionNode[K, V]{h1, []mapEntry[K, V]{{key: k1, value: v1}, {key: k2, value: v2}}}
	}
	n, _ := (&bitmapNode[K, V]{}).assoc(shift, h1, k1, v1)
	n, _ = n.assoc(shift, h2, k2, v2)
	return n
}

func (n *bitmapNode[K, V]) unpack(shift, idx uint32, newChild node[K, V]) *arrayNode[K, V] {
	var newNode arrayNode[K, V]
	newNode.nChildren = len(n.entries) + 1
	newNode.children[idx] = newChild
	j := 0
	for i := uint(0); i < nodeCap; i++ {
		if (n.bitmap>>i)&1 != 0 {
			entry := n.entries[j]
			j++
			if entry.child != nil {
				newNode.children[i] = entry.child
			} else {
				newNode.children[i], _ = (&bitmapNode[K, V]{}).assoc(
					shift+chunkBits, entry.key.Hash(), entry.key, entry.value)
			}
		}
	}
	return &newNode
}

func (n *bitmapNode[K, V]) withReplacedEntry(i uint32, entry mapEntry[K, V]) *bitmapNode[K, V] {
	newEntries := append([]mapEntry[K, V](nil), n.entries...)
	newEntries[i] = entry
	return &bitmapNode[K, V]{n.bitmap, newEntries}
}

func (n *bitmapNode[K, V]) assoc(shift, hash uint32, k K, v V) (node[K, V], bool) {
	bit := bitpos(shift, hash)
	idx := index(n.bitmap, bit)
	if n.bitmap&bit == 0 {
		// Entry does not exist yet
		nEntries := len(n.entries)
		if nEntries >= nodeCap/2 {
			// Unpack into an arrayNode
			newNode, _ := (&bitmapNode[K, V]{}).assoc(shift+chunkBits, hash, k, v)
			return n.unpack(shift, chunk(shift, hash), newNode), true
		}
		// Add a new entry
		newEntries := make([]mapEntry[K, V], len(n.entries)+1)
		copy(newEntries[:idx], n.entries[:idx])
		newEntries[idx] = mapEntry[K, V]{key: k, value: v}
		copy(newEntries[idx+1:], n.entries[idx:])
		return &bitmapNode[K, V]{n.bitmap | bit, newEntries}, true
	}
	// Entry exists
	entry := n.entries[idx]
	if entry.child != nil {
		// Non-leaf child
		newChild, added := entry.child.assoc(shift+chunkBits, hash, k, v)
		return n.withReplacedEntry(idx, mapEntry[K, V]{child: newChild}), added
	}
	// Leaf
	if k.Equal(entry.key) {
		// Identical key, replace
		return n.withReplacedEntry(idx, mapEntry[K, V]{key: k, value: v}), false
	}
	// Create and insert new inner node
	newNode := createNode(shift+chunkBits, entry.key, entry.value, hash, k, v)
	return n.withReplacedEntry(idx, mapEntry[K, V]{child: newNode}), true
}

func (n *bitmapNode[K, V]) find(shift, hash uint32, k K) (V, bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		var zero V
		return zero, false
	}
	entry := n.entries[index(n.bitmap, bit)]
	if entry.child != nil {
		return entry.child.find(shift+chunkBits, hash, k)
	} else if entry.key.Equal(k) {
		return entry.value, true
	}
	var zero V
	return zero, false
}

type collisionNode[K Key, V any] struct {
	hash    uint32
	entries []mapEntry[K, V]
}

func (n *collisionNode[K, V]) assoc(shift, hash uint32, k K, v V) (node[K, V], bool) {
	if hash == n.hash {
		idx := n.findIndex(k)
		if idx != -1 {
			newEntries := append([]mapEntry[K, V](nil), n.entries...)
			newEntries[idx] = mapEntry[K, V]{key: k, value: v}
			return &collisionNode[K, V]{n.hash, newEntries}, false
		}
		newEntries := make([]mapEntry[K, V], len(n.entries)+1)
		copy(newEntries, n.entries)
		newEntries[len(n.entries)] = mapEntry[K, V]{key: k, value: v}
		return &collisionNode[K, V]{n.hash, newEntries}, true
	}
	// Wrap in a bitmapNode and add the entry
	wrap := bitmapNode[K, V]{bitpos(shift, n.hash), []mapEntry[K, V]{{child: n}}}
	return wrap.assoc(shift, hash, k, v)
}

func (n *collisionNode[K, V]) find(shift, hash uint32, k K) (V, bool) {
	idx := n.findIndex(k)
	if idx == -1 {
		var zero V
		return zero, false
	}
	return n.entries[idx].value, true
}

func (n *collisionNode[K, V]) findIndex(k K) int {
	for i, entry := range n.entries {
		if k.Equal(entry.key) {
			return i
		}
	}
	return -1
}
