package hashmap

import (
	"math/rand"
	"strconv"
	"testing"
)

// testKey is an implementation of the Key interface for testing.
type testKey uint64

// Hash returns the lower 32 bits. This is intended so that hash collisions can
// be easily constructed.
func (x testKey) Hash() uint32 {
	return uint32(x & 0xffffffff)
}

// Equal returns true if and only if the other value is also a testKey and they
// are equal.
func (x testKey) Equal(other any) bool {
	y, ok := other.(testKey)
	return ok && x == y
}

const (
	NSequential = 0x1000
	NCollision  = 0x100
	NRandom     = 0x4000
	NReplace    = 0x200

	SmallRandomPass      = 0x100
	NSmallRandom         = 0x400
	SmallRandomHighBound = 0x50
	SmallRandomLowBound  = 0x200
)

type refEntry struct {
	k testKey
	v string
}

func hex(i uint64) string {
	return "0x" + strconv.FormatUint(i, 16)
}

func TestHashMap(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	var refEntries []refEntry
	add := func(k testKey, v string) {
		refEntries = append(refEntries, refEntry{k, v})
	}

	for i := 0; i < NSequential; i++ {
		add(testKey(i), hex(uint64(i)))
	}
	for i := 0; i < NCollision; i++ {
		add(testKey(uint64(i+1)<<32), "collision "+hex(uint64(i)))
	}
	for i := 0; i < NRandom; i++ {
		k := r.Uint64()
		add(testKey(k), "random "+hex(k))
	}
	for i := 0; i < NReplace; i++ {
		k := uint64(r.Int31n(NSequential))
		add(testKey(k), "replace "+hex(k))
	}

	testHashMapWithRefEntries(t, refEntries)
}

func TestHashMapSmallRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for p := 0; p < SmallRandomPass; p++ {
		var refEntries []refEntry
		for i := 0; i < NSmallRandom; i++ {
			k := uint64(r.Int31n(SmallRandomHighBound))<<32 |
				uint64(r.Int31n(SmallRandomLowBound))
			refEntries = append(refEntries, refEntry{testKey(k), "random " + hex(k)})
		}
		testHashMapWithRefEntries(t, refEntries)
	}
}

func TestHashMap_ZeroValue(t *testing.T) {
	var m Map[testKey, int]
	if _, ok := m.Index(1); ok {
		t.Errorf("zero Map has key 1")
	}
	m = m.Assoc(1, 10)
	if v, ok := m.Index(1); !ok || v != 10 {
		t.Errorf("Index(1) = %v, %v", v, ok)
	}
}

func TestHashMap_Persistence(t *testing.T) {
	m1 := Empty[testKey, string]().Assoc(1, "a")
	m2 := m1.Assoc(2, "b").Assoc(1, "c")
	if v, _ := m1.Index(1); v != "a" {
		t.Errorf("old map sees replacement")
	}
	if _, ok := m1.Index(2); ok {
		t.Errorf("old map sees addition")
	}
	if v, _ := m2.Index(1); v != "c" || m2.Len() != 2 {
		t.Errorf("new map: Index(1) = %q, Len() = %d", v, m2.Len())
	}
}

// testHashMapWithRefEntries tests the operations of a Map. It uses the supplied
// list of entries to build the map, and then test all its operations.
func testHashMapWithRefEntries(t *testing.T, refEntries []refEntry) {
	m := Empty[testKey, string]()
	// Len of Empty should be 0.
	if m.Len() != 0 {
		t.Errorf("m.Len = %d, want %d", m.Len(), 0)
	}

	// Assoc and Len, test by building a map simultaneously.
	ref := make(map[testKey]string, len(refEntries))
	for _, e := range refEntries {
		ref[e.k] = e.v
		m = m.Assoc(e.k, e.v)
		if m.Len() != len(ref) {
			t.Errorf("m.Len = %d, want %d", m.Len(), len(ref))
		}
	}

	// Index.
	for k, wantValue := range ref {
		v, ok := m.Index(k)
		if !ok {
			t.Errorf("m.Index 0x%x returns false", uint64(k))
		}
		if v != wantValue {
			t.Errorf("m.Index(0x%x) = %v, want %v", uint64(k), v, wantValue)
		}
	}
	// Index with keys that don't exist.
	for i := 0; i < 16; i++ {
		k := testKey(uint64(i)<<32 | 0xdeadbeef)
		if _, inRef := ref[k]; inRef {
			continue
		}
		if v, ok := m.Index(k); ok {
			t.Errorf("m.Index(0x%x) returns (%v, true) for a missing key", uint64(k), v)
		}
	}
}
