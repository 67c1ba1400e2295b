package decl

import (
	"testing"

	"gopkg.in/yaml.v3"
	"src.elabenv.dev/pkg/name"
)

func TestWithValue(t *testing.T) {
	d := New(name.New("Nat", "add"), Definition, "Nat -> Nat -> Nat")
	if d.HasValue() {
		t.Errorf("declaration without value reports HasValue")
	}
	d2 := d.WithValue("fun a b => a + b")
	if !d2.HasValue() || d.HasValue() {
		t.Errorf("WithValue did not return a copy")
	}
}

func TestYAML(t *testing.T) {
	d := New(name.New("Eq", "refl"), Theorem, "a = a").WithValue("rfl")
	d.LevelNames = []name.Name{name.New("u")}
	data, err := yaml.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var got Declaration
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != d.Name || got.Kind != Theorem || got.Value != "rfl" ||
		len(got.LevelNames) != 1 || got.LevelNames[0] != name.New("u") {
		t.Errorf("round trip of %+v gave %+v", d, got)
	}
}
