// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"src.elabenv.dev/pkg/decl"
	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/name"
	"src.elabenv.dev/pkg/store/storedefs"
)

var nameComparer = cmp.Comparer(func(a, b name.Name) bool { return a == b })

func moduleData(constants ...string) *modfile.ModuleData {
	d := &modfile.ModuleData{Imports: []name.Name{name.New("Init")}}
	for _, c := range constants {
		d.Constants = append(d.Constants, decl.New(name.MustParse(c), decl.Axiom, "Prop"))
	}
	return d
}

// TestModules tests the module functionality of a Store.
func TestModules(t *testing.T, store storedefs.Store) {
	a, b := name.New("A"), name.New("B", "sub")

	_, err := store.Module(a)
	if !errors.Is(err, storedefs.ErrNoModule) {
		t.Errorf("Module of a missing module -> %v, want ErrNoModule", err)
	}

	rev1, err := store.PutModule(a, moduleData("A.x"), "digest-1")
	if err != nil {
		t.Fatalf("PutModule(A) -> %v", err)
	}
	rev2, err := store.PutModule(b, moduleData("B.sub.y"), "")
	if err != nil {
		t.Fatalf("PutModule(B.sub) -> %v", err)
	}
	if rev2 <= rev1 {
		t.Errorf("revisions %d, %d not increasing", rev1, rev2)
	}

	got, err := store.Module(a)
	if err != nil {
		t.Fatalf("Module(A) -> %v", err)
	}
	if diff := cmp.Diff(moduleData("A.x").Constants, got.Constants, nameComparer, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Module(A) constants (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]name.Name{name.New("Init")}, got.Imports, nameComparer); diff != "" {
		t.Errorf("Module(A) imports (-want +got):\n%s", diff)
	}

	if source, err := store.ModuleSource(a); err != nil || source != "digest-1" {
		t.Errorf("ModuleSource(A) -> %q, %v", source, err)
	}
	if source, err := store.ModuleSource(b); err != nil || source != "" {
		t.Errorf("ModuleSource(B.sub) -> %q, %v", source, err)
	}

	names, err := store.ModuleNames()
	if err != nil {
		t.Fatalf("ModuleNames() -> %v", err)
	}
	if diff := cmp.Diff([]name.Name{a, b}, names, nameComparer); diff != "" {
		t.Errorf("ModuleNames (-want +got):\n%s", diff)
	}

	rev3, err := store.PutModule(a, moduleData("A.z"), "digest-2")
	if err != nil {
		t.Fatalf("PutModule(A) again -> %v", err)
	}
	if rev, _ := store.ModuleRevision(a); rev != rev3 {
		t.Errorf("ModuleRevision(A) = %d, want %d", rev, rev3)
	}
	if source, _ := store.ModuleSource(a); source != "digest-2" {
		t.Errorf("ModuleSource(A) after replacing = %q", source)
	}
	if got, _ := store.Module(a); len(got.Constants) != 1 || got.Constants[0].Name != name.MustParse("A.z") {
		t.Errorf("Module(A) after replacing = %v", got)
	}

	if err := store.DelModule(a); err != nil {
		t.Errorf("DelModule(A) -> %v", err)
	}
	if _, err := store.Module(a); !errors.Is(err, storedefs.ErrNoModule) {
		t.Errorf("Module(A) after deleting -> %v", err)
	}
	if _, err := store.ModuleRevision(a); !errors.Is(err, storedefs.ErrNoModule) {
		t.Errorf("ModuleRevision(A) after deleting -> %v", err)
	}
	if _, err := store.ModuleSource(a); !errors.Is(err, storedefs.ErrNoModule) {
		t.Errorf("ModuleSource(A) after deleting -> %v", err)
	}
	if err := store.DelModule(a); err != nil {
		t.Errorf("DelModule(A) again -> %v", err)
	}

	if _, err := store.PutModule(name.Anonymous, moduleData(), ""); !errors.Is(err, storedefs.ErrAnonymousModule) {
		t.Errorf("PutModule(anonymous) -> %v, want ErrAnonymousModule", err)
	}
	if _, err := store.ModuleNames(); err != nil {
		t.Errorf("ModuleNames() after rejected put -> %v", err)
	}

	odd := name.New("1».«2")
	if _, err := store.PutModule(odd, moduleData(), ""); err != nil {
		t.Fatalf("PutModule(%v) -> %v", odd, err)
	}
	if _, err := store.Module(name.New("1", "2")); !errors.Is(err, storedefs.ErrNoModule) {
		t.Errorf("module %v is visible as 1.2: %v", odd, err)
	}
	names, err = store.ModuleNames()
	if err != nil {
		t.Fatalf("ModuleNames() -> %v", err)
	}
	if diff := cmp.Diff([]name.Name{b, odd}, names, nameComparer, cmpopts.SortSlices(name.QuickLt)); diff != "" {
		t.Errorf("ModuleNames (-want +got):\n%s", diff)
	}
}
