// Package smap implements a staged map: a persistent ordered tree while the
// map is being bulk-built, and a chained hash table after a one-way switch.
//
// The first stage is an rbmap.Map, so every value is a cheap persistent
// snapshot. After Switch, new associations go to a hash table with amortized
// O(1) insertion and lookup, while the tree is kept, read-only, for the
// associations made before the switch.
//
// The hash table is shared between a map value and the values derived from it.
// Each value remembers how many table entries it can see; an Insert on the
// newest value appends in place, while an Insert on an older value copies the
// visible part of the table first. Either way, no value ever observes an
// association made through another value, so Map behaves as a persistent map
// in both stages.
package smap

import (
	"sync"
	"sync/atomic"

	"src.elabenv.dev/pkg/persistent/rbmap"
)

const initialBuckets = 8

// Map is a staged map. The zero value is not usable; create maps with New.
type Map[K, V any] struct {
	stage1 bool
	tree   rbmap.Map[K, V]
	table  *table[K, V]
	// Number of table entries visible to this value.
	seen int
	size int
	hash func(K) uint32
	cmp  func(a, b K) int
}

// New returns an empty map in the first stage. The tree is ordered by cmp;
// hash is used after Switch, and must agree with cmp: keys that compare equal
// must have equal hashes.
func New[K, V any](cmp func(a, b K) int, hash func(K) uint32) Map[K, V] {
	return Map[K, V]{stage1: true, tree: rbmap.New[K, V](cmp), hash: hash, cmp: cmp}
}

// Len returns the number of distinct keys in the map.
func (m Map[K, V]) Len() int { return m.size }

// IsStage1 reports whether Switch has not been called on the map or any value
// it derives from.
func (m Map[K, V]) IsStage1() bool { return m.stage1 }

// Find returns the value associated with k and whether there is one. After
// Switch, the hash table is consulted first and the tree second.
func (m Map[K, V]) Find(k K) (V, bool) {
	if !m.stage1 {
		if e := m.table.find(k, m.seen, m.hash(k), m.cmp); e != nil {
			return e.value, true
		}
	}
	return m.tree.Find(k)
}

// Contains reports whether the map has an association for k.
func (m Map[K, V]) Contains(k K) bool {
	_, ok := m.Find(k)
	return ok
}

// Insert returns a map in which k is associated with v. In the first stage
// the association goes into the tree; afterwards into the hash table.
func (m Map[K, V]) Insert(k K, v V) Map[K, V] {
	size := m.size
	if !m.Contains(k) {
		size++
	}
	if m.stage1 {
		m.tree = m.tree.Insert(k, v)
		m.size = size
		return m
	}
	m.table, m.seen = m.table.insert(m.seen, k, v, m.hash(k), m.hash)
	m.size = size
	return m
}

// Switch moves the map to the second stage. Calling it on a map that is
// already in the second stage returns the map unchanged.
func (m Map[K, V]) Switch() Map[K, V] {
	if !m.stage1 {
		return m
	}
	m.stage1 = false
	m.table = newTable[K, V](initialBuckets)
	m.seen = 0
	return m
}

// ForEach calls f on every association, stopping early if f returns false.
// Associations from the hash table are visited first, in no particular order,
// followed by tree associations not shadowed by the hash table, in tree order.
func (m Map[K, V]) ForEach(f func(k K, v V) bool) {
	if !m.stage1 {
		if !m.table.forEach(m.seen, m.hash, m.cmp, f) {
			return
		}
	}
	m.tree.ForEach(func(k K, v V) bool {
		if !m.stage1 && m.table.find(k, m.seen, m.hash(k), m.cmp) != nil {
			return true
		}
		return f(k, v)
	})
}

// ForEachStage2 calls f on every association made after Switch, stopping
// early if f returns false. It visits nothing for a map in the first stage.
func (m Map[K, V]) ForEachStage2(f func(k K, v V) bool) {
	if !m.stage1 {
		m.table.forEach(m.seen, m.hash, m.cmp, f)
	}
}

type entry[K, V any] struct {
	key   K
	value V
	seq   int
	next  *entry[K, V]
}

type buckets[K, V any] []atomic.Pointer[entry[K, V]]

// table is an append-only chained hash table. Entries are immutable once
// published and carry the sequence number of their insertion; chains are
// ordered newest first.
type table[K, V any] struct {
	// Serializes writers. Readers never lock.
	mu      sync.Mutex
	buckets atomic.Pointer[buckets[K, V]]
	// Number of entries appended so far; guarded by mu.
	count int
}

func newTable[K, V any](n int) *table[K, V] {
	t := &table[K, V]{}
	b := make(buckets[K, V], n)
	t.buckets.Store(&b)
	return t
}

// find returns the newest entry for k among the first seen entries.
func (t *table[K, V]) find(k K, seen int, h uint32, cmp func(a, b K) int) *entry[K, V] {
	return findIn(*t.buckets.Load(), k, seen, h, cmp)
}

func findIn[K, V any](b buckets[K, V], k K, seen int, h uint32, cmp func(a, b K) int) *entry[K, V] {
	for e := b[h&uint32(len(b)-1)].Load(); e != nil; e = e.next {
		if e.seq < seen && cmp(e.key, k) == 0 {
			return e
		}
	}
	return nil
}

// insert appends an entry as the value that has seen the first seen entries,
// and returns the table to use and the new number of visible entries.
func (t *table[K, V]) insert(seen int, k K, v V, h uint32, hash func(K) uint32) (*table[K, V], int) {
	t.mu.Lock()
	if t.count != seen {
		// Some other value has appended to the table since this value was
		// made. Fork off the part of the table this value sees.
		t.mu.Unlock()
		t = t.prefix(seen, hash)
		t.mu.Lock()
	}
	defer t.mu.Unlock()
	if t.count >= len(*t.buckets.Load()) {
		t.grow(hash)
	}
	b := *t.buckets.Load()
	head := &b[h&uint32(len(b)-1)]
	head.Store(&entry[K, V]{k, v, t.count, head.Load()})
	t.count++
	return t, t.count
}

// grow doubles the number of buckets. It must be called with mu held.
func (t *table[K, V]) grow(hash func(K) uint32) {
	old := *t.buckets.Load()
	t.buckets.Store(rehash(collect(old, t.count), 2*len(old), hash))
}

// prefix returns a new table with the entries whose sequence numbers are less
// than n.
func (t *table[K, V]) prefix(n int, hash func(K) uint32) *table[K, V] {
	old := *t.buckets.Load()
	nBuckets := initialBuckets
	for nBuckets < n {
		nBuckets *= 2
	}
	nt := &table[K, V]{count: n}
	nt.buckets.Store(rehash(collect(old, n), nBuckets, hash))
	return nt
}

// collect returns the entries with sequence numbers less than n, indexed by
// sequence number.
func collect[K, V any](b buckets[K, V], n int) []*entry[K, V] {
	all := make([]*entry[K, V], n)
	for i := range b {
		for e := b[i].Load(); e != nil; e = e.next {
			if e.seq < n {
				all[e.seq] = e
			}
		}
	}
	return all
}

// rehash builds a bucket array from entries in sequence order, so that each
// chain is again ordered newest first.
func rehash[K, V any](all []*entry[K, V], n int, hash func(K) uint32) *buckets[K, V] {
	b := make(buckets[K, V], n)
	for _, e := range all {
		head := &b[hash(e.key)&uint32(n-1)]
		head.Store(&entry[K, V]{e.key, e.value, e.seq, head.Load()})
	}
	return &b
}

func (t *table[K, V]) forEach(seen int, hash func(K) uint32, cmp func(a, b K) int, f func(K, V) bool) bool {
	b := *t.buckets.Load()
	for i := range b {
		for e := b[i].Load(); e != nil; e = e.next {
			if e.seq >= seen {
				continue
			}
			// Only visit the newest visible entry for each key.
			if findIn(b, e.key, seen, hash(e.key), cmp) != e {
				continue
			}
			if !f(e.key, e.value) {
				return false
			}
		}
	}
	return true
}
