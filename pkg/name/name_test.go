package name

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
	"src.elabenv.dev/pkg/tt"
)

var stringTests = []struct {
	name Name
	want string
}{
	{Anonymous, "[anonymous]"},
	{New("Nat"), "Nat"},
	{New("Nat", "add"), "Nat.add"},
	{Num(New("foo"), 12), "foo.12"},
	{New("foo", "12"), "foo.«12»"},
	{New("a.b", "c"), "«a.b».c"},
	{New(""), "«»"},
	{New("a»b"), "«a»»b»"},
	{New("»"), "«»»»"},
	{New("1».«2"), "«1»».«2»"},
	{New("1", "2"), "«1».«2»"},
}

func TestString(t *testing.T) {
	for _, test := range stringTests {
		if got := test.name.String(); got != test.want {
			t.Errorf("String() = %q, want %q", got, test.want)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, test := range stringTests {
		if test.name.IsAnonymous() {
			continue
		}
		got, err := Parse(test.name.String())
		if err != nil {
			t.Errorf("Parse(%q) -> error %v", test.name.String(), err)
			continue
		}
		if got != test.name {
			t.Errorf("Parse(%q) -> %v, want %v", test.name.String(), got, test.name)
		}
	}
}

func TestParse(t *testing.T) {
	tt.Test(t, tt.Fn("Parse", Parse), tt.Table{
		tt.Args("").Rets(Anonymous, nil),
		tt.Args("Nat.add").Rets(New("Nat", "add"), nil),
		tt.Args("foo.1.bar").Rets(Str(Num(New("foo"), 1), "bar"), nil),
		tt.Args("«x.y»").Rets(New("x.y"), nil),
		tt.Args("«x").Rets(Anonymous, ErrUnterminatedQuote),
		tt.Args("a..b").Rets(Anonymous, ErrEmptyComponent),
		tt.Args("a.").Rets(Anonymous, ErrEmptyComponent),
		tt.Args("«a»b").Rets(Anonymous, ErrMissingDot),
		tt.Args("«a»»b»").Rets(New("a»b"), nil),
		tt.Args("«1»».«2»").Rets(New("1».«2"), nil),
		tt.Args("«a»»").Rets(Anonymous, ErrUnterminatedQuote),
	})
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("MustParse did not panic")
		}
	}()
	MustParse("a..b")
}

func TestComponents(t *testing.T) {
	n := Str(Num(New("foo"), 3), "bar")
	want := []Component{{Str: "foo"}, {Num: 3, IsNum: true}, {Str: "bar"}}
	if diff := cmp.Diff(want, n.Components()); diff != "" {
		t.Errorf("Components (-want +got):\n%s", diff)
	}
	if FromComponents(want) != n {
		t.Errorf("FromComponents does not invert Components")
	}
	if n.Prefix() != Num(New("foo"), 3) {
		t.Errorf("Prefix() = %v", n.Prefix())
	}
	last, ok := n.Last()
	if !ok || last != (Component{Str: "bar"}) {
		t.Errorf("Last() = %v, %v", last, ok)
	}
	if _, ok := Anonymous.Last(); ok {
		t.Errorf("Anonymous.Last() reports a component")
	}
	if Anonymous.Prefix() != Anonymous {
		t.Errorf("Anonymous.Prefix() is not Anonymous")
	}
}

func TestComponents_QuoteInside(t *testing.T) {
	n := Str(New("a»b"), "c«")
	want := []Component{{Str: "a»b"}, {Str: "c«"}}
	if diff := cmp.Diff(want, n.Components()); diff != "" {
		t.Errorf("Components (-want +got):\n%s", diff)
	}
	if n.Prefix() != New("a»b") {
		t.Errorf("Prefix() = %v", n.Prefix())
	}
}

func TestHashAndEqual(t *testing.T) {
	a := New("Nat", "add")
	b := MustParse("Nat.add")
	if a != b || a.Hash() != b.Hash() || !a.Equal(b) {
		t.Errorf("equal names disagree: %v %v", a, b)
	}
	if a.Equal("Nat.add") {
		t.Errorf("Name equals a string")
	}
	if New("1") == Num(Anonymous, 1) {
		t.Errorf("string component equals numeric component")
	}
}

func TestQuickCmp(t *testing.T) {
	names := []Name{
		New("a"), New("b"), New("a", "b"), Num(New("a"), 1), New("a", "1"),
		New("Nat", "add"), New("Nat", "mul"), Anonymous,
	}
	for i, a := range names {
		for j, b := range names {
			c := QuickCmp(a, b)
			if (c == 0) != (i == j) {
				t.Errorf("QuickCmp(%v, %v) = %d", a, b, c)
			}
			if c != -QuickCmp(b, a) {
				t.Errorf("QuickCmp(%v, %v) is not antisymmetric", a, b)
			}
			if QuickLt(a, b) != (c < 0) {
				t.Errorf("QuickLt(%v, %v) disagrees with QuickCmp", a, b)
			}
		}
	}
}

func TestYAML(t *testing.T) {
	type doc struct {
		Names []Name `yaml:"names"`
	}
	in := doc{[]Name{New("Nat", "add"), Num(New("x"), 2), New("a.b"), New("1».«2"), New("1", "2")}}
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out doc
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out, cmp.Comparer(func(a, b Name) bool { return a == b })); diff != "" {
		t.Errorf("YAML round trip (-want +got):\n%s", diff)
	}

	var bad doc
	if err := yaml.Unmarshal([]byte("names: [\"«x\"]"), &bad); err == nil {
		t.Errorf("decoding a malformed name succeeded")
	}
}
