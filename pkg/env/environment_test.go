package env

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.elabenv.dev/pkg/decl"
	"src.elabenv.dev/pkg/must"
	"src.elabenv.dev/pkg/name"
)

func frozenRegistry() *Registry {
	r := NewRegistry()
	r.Freeze()
	return r
}

var nameComparer = cmp.Comparer(func(a, b name.Name) bool { return a == b })

func sameDecl(a, b decl.Declaration) bool {
	return cmp.Equal(a, b, nameComparer)
}

func axiom(s string) decl.Declaration {
	return decl.New(name.MustParse(s), decl.Axiom, "Prop")
}

func TestEmpty(t *testing.T) {
	e := must.OK1(Empty(frozenRegistry(), 3))
	if e.TrustLevel() != 3 {
		t.Errorf("TrustLevel() = %d, want 3", e.TrustLevel())
	}
	if e.IsQuotientInitialized() {
		t.Errorf("quotient initialized in an empty environment")
	}
	if e.NumConstants() != 0 || len(e.Imports()) != 0 || len(e.ModuleNames()) != 0 {
		t.Errorf("empty environment is not empty")
	}
	if _, ok := e.ModuleIndexFor(name.New("x")); ok {
		t.Errorf("ModuleIndexFor found a module in an empty environment")
	}
}

func TestAdd_Persistence(t *testing.T) {
	e := must.OK1(Empty(frozenRegistry(), 0)).Add(axiom("foo"))
	before, _ := e.Find(name.New("foo"))

	e2 := e.Add(axiom("bar"))
	after, ok := e.Find(name.New("foo"))
	if !ok || !sameDecl(after, before) {
		t.Errorf("Find(foo) changed after Add(bar): %v -> %v", before, after)
	}
	if e.Contains(name.New("bar")) {
		t.Errorf("Add(bar) changed the old environment")
	}
	if !e2.Contains(name.New("bar")) || !e2.Contains(name.New("foo")) {
		t.Errorf("new environment is missing declarations")
	}
	if e.NumConstants() != 1 || e2.NumConstants() != 2 {
		t.Errorf("NumConstants() = %d, %d; want 1, 2", e.NumConstants(), e2.NumConstants())
	}
}

func TestAdd_LastWriteWins(t *testing.T) {
	a1 := decl.New(name.New("A"), decl.Opaque, "Nat")
	a2 := decl.New(name.New("A"), decl.Definition, "Nat").WithValue("0")
	e := must.OK1(Empty(frozenRegistry(), 0)).Add(a1).Add(a2)

	got, ok := e.Find(name.New("A"))
	if !ok || !sameDecl(got, a2) {
		t.Errorf("Find(A) = %v, %v; want %v", got, ok, a2)
	}
	if e.NumConstants() != 1 {
		t.Errorf("NumConstants() = %d, want 1", e.NumConstants())
	}
}

func TestFind_Missing(t *testing.T) {
	e := must.OK1(Empty(frozenRegistry(), 0))
	if _, ok := e.Find(name.New("nope")); ok {
		t.Errorf("Find(nope) succeeded")
	}
}

func TestMarkQuotientInitialized(t *testing.T) {
	e := must.OK1(Empty(frozenRegistry(), 0))
	e2 := e.MarkQuotientInitialized()
	if e.IsQuotientInitialized() || !e2.IsQuotientInitialized() {
		t.Errorf("quotient flags = %v, %v; want false, true",
			e.IsQuotientInitialized(), e2.IsQuotientInitialized())
	}
}

func TestSwitchToSharedMode(t *testing.T) {
	e := must.OK1(Empty(frozenRegistry(), 0))
	for i := 0; i < 100; i++ {
		e = e.Add(decl.New(name.Num(name.New("c"), uint64(i)), decl.Axiom, "Prop"))
	}
	shared := e.SwitchToSharedMode().Add(axiom("after"))
	for i := 0; i < 100; i++ {
		if !shared.Contains(name.Num(name.New("c"), uint64(i))) {
			t.Fatalf("c.%d lost after switching", i)
		}
	}
	if !shared.Contains(name.New("after")) || e.Contains(name.New("after")) {
		t.Errorf("declarations added after switching leak or are lost")
	}

	n := 0
	shared.ForEachConstant(func(decl.Declaration) bool { n++; return true })
	if n != 101 {
		t.Errorf("ForEachConstant visited %d declarations, want 101", n)
	}
}

func TestModifications(t *testing.T) {
	e := must.OK1(Empty(frozenRegistry(), 0))
	e2 := e.AddModification("a").AddModification("b")
	if len(e.Modifications()) != 0 {
		t.Errorf("AddModification changed the old environment")
	}
	got := e2.Modifications()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Modifications() = %v, want [a b]", got)
	}
}
