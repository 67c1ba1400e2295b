package env

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.elabenv.dev/pkg/must"
	"src.elabenv.dev/pkg/name"
)

func sum(_ bool, acc, n int) int { return acc + n }

// counterExtension registers an extension that sums its entries and counts
// fold steps.
type counterExtension struct {
	*PersistentExtension[int, int]
	steps    int
	imported int
}

func registerCounter(r *Registry, n string, lazy bool) *counterExtension {
	c := &counterExtension{}
	c.PersistentExtension = must.OK1(RegisterPersistentExtension(r, PersistentDescriptor[int, int]{
		Name: name.MustParse(n),
		AddEntry: func(imported bool, acc, n int) int {
			c.steps++
			if imported {
				c.imported++
			}
			return acc + n
		},
		Lazy: lazy,
	}))
	return c
}

func TestPersistentExtension_Sum(t *testing.T) {
	r := NewRegistry()
	x := registerCounter(r, "counter", false)
	r.Freeze()
	e := must.OK1(Empty(r, 0))

	e = x.AddEntry(e, 3)
	e = x.AddEntry(e, 4)
	if got := x.GetState(e); got != 7 {
		t.Errorf("GetState() = %d, want 7", got)
	}
	if diff := cmp.Diff([]int{3, 4}, x.GetEntries(e)); diff != "" {
		t.Errorf("GetEntries (-want +got):\n%s", diff)
	}
	if x.imported != 0 {
		t.Errorf("entries of the current module folded as imported")
	}
}

func TestPersistentExtension_IncrementalFold(t *testing.T) {
	const n = 200
	r := NewRegistry()
	x := registerCounter(r, "counter", false)
	r.Freeze()
	e := must.OK1(Empty(r, 0))

	want := 0
	for i := 1; i <= n; i++ {
		e = x.AddEntry(e, i)
		want += i
		if got := x.GetState(e); got != want {
			t.Fatalf("after %d entries: GetState() = %d, want %d", i, got, want)
		}
	}
	if x.steps != n {
		t.Errorf("%d fold steps for %d entries, want %d", x.steps, n, n)
	}
}

func TestPersistentExtension_DeferredFold(t *testing.T) {
	r := NewRegistry()
	x := registerCounter(r, "counter", true)
	r.Freeze()
	e := must.OK1(Empty(r, 0))
	// The initial state is computed, so entries are folded as they come.
	e = x.AddEntry(e, 1)
	if x.steps != 1 {
		t.Errorf("steps = %d, want 1", x.steps)
	}

	imported := must.OK1(ImportModules(r, nil, ImportOptions{}))
	imported = x.AddEntry(imported, 5)
	imported = x.AddEntry(imported, 6)
	steps := x.steps
	if got := x.GetState(imported); got != 11 {
		t.Errorf("GetState() = %d, want 11", got)
	}
	if x.steps != steps+2 {
		t.Errorf("deferred fold took %d steps, want 2", x.steps-steps)
	}
	// Memoized.
	x.GetState(imported)
	if x.steps != steps+2 {
		t.Errorf("GetState is not memoized")
	}
}

func TestPersistentExtension_Persistence(t *testing.T) {
	r := NewRegistry()
	x := registerCounter(r, "counter", false)
	r.Freeze()
	e1 := x.AddEntry(must.OK1(Empty(r, 0)), 1)
	e2 := x.AddEntry(e1, 2)
	e3 := x.AddEntry(e1, 10)

	if x.GetState(e1) != 1 || x.GetState(e2) != 3 || x.GetState(e3) != 11 {
		t.Errorf("states = %d, %d, %d; want 1, 3, 11",
			x.GetState(e1), x.GetState(e2), x.GetState(e3))
	}
	if diff := cmp.Diff([]int{1}, x.GetEntries(e1)); diff != "" {
		t.Errorf("GetEntries(e1) (-want +got):\n%s", diff)
	}
}

func TestPersistentExtension_ForceState(t *testing.T) {
	r := NewRegistry()
	x := registerCounter(r, "counter", true)
	r.Freeze()
	e := must.OK1(ImportModules(r, nil, ImportOptions{}))
	e = x.AddEntry(e, 2)
	e = x.AddEntry(e, 3)
	if x.steps != 0 {
		t.Fatalf("entries folded before the state was read")
	}

	forced := x.ForceState(e)
	if x.steps != 2 {
		t.Errorf("ForceState took %d steps, want 2", x.steps)
	}
	if x.ForceState(forced) != forced {
		t.Errorf("ForceState of a forced environment made a new one")
	}
	forced = x.AddEntry(forced, 4)
	if x.steps != 3 {
		t.Errorf("AddEntry after ForceState is not incremental")
	}
	if got := x.GetState(forced); got != 9 {
		t.Errorf("GetState() = %d, want 9", got)
	}
}

func TestPersistentExtension_GetModuleEntriesOutOfRange(t *testing.T) {
	r := NewRegistry()
	x := registerCounter(r, "counter", false)
	r.Freeze()
	e := must.OK1(Empty(r, 0))
	for _, idx := range []ModuleIdx{0, 1, 1000} {
		if got := x.GetModuleEntries(e, idx); len(got) != 0 {
			t.Errorf("GetModuleEntries(%d) = %v, want empty", idx, got)
		}
	}
}

func TestPersistentExtension_Name(t *testing.T) {
	r := NewRegistry()
	x := registerCounter(r, "attr.simp", false)
	if x.Name() != name.New("attr", "simp") {
		t.Errorf("Name() = %v", x.Name())
	}
	if x.Slot() != 1 {
		t.Errorf("Slot() = %d, want 1", x.Slot())
	}
}
