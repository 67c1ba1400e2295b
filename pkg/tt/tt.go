// Package tt runs table-driven tests against a function called through
// reflection.
//
// A table is a list of cases built with Args(...).Rets(...). A wanted return
// value matches the actual one when it is a Matcher that accepts it, when both
// are errors and errors.Is holds, or when they are reflect.DeepEqual.
package tt

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Table is a list of test cases.
type Table []*Case

// Case holds the arguments of one call and the return values wanted from it.
type Case struct {
	args []any
	want [][]any
}

// Args starts a case that calls the function with args.
func Args(args ...any) *Case {
	return &Case{args: args}
}

// Rets adds a set of wanted return values to c and returns c. A case may have
// more than one set; each is checked on its own.
func (c *Case) Rets(want ...any) *Case {
	c.want = append(c.want, want)
	return c
}

// FnToTest is a function under test with the name used in failure messages.
type FnToTest struct {
	name    string
	body    any
	argsFmt string
	retsFmt string
}

// Fn wraps a function for Test.
func Fn(name string, body any) *FnToTest {
	return &FnToTest{name: name, body: body}
}

// ArgsFmt sets a format string for arguments in failure messages.
func (fn *FnToTest) ArgsFmt(s string) *FnToTest {
	fn.argsFmt = s
	return fn
}

// RetsFmt sets a format string for return values in failure messages.
func (fn *FnToTest) RetsFmt(s string) *FnToTest {
	fn.retsFmt = s
	return fn
}

// T is the subset of *testing.T that Test uses.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Test calls fn with the arguments of every case in tests and reports the
// sets of wanted return values that do not match.
func Test(t T, fn *FnToTest, tests Table) {
	t.Helper()
	for _, c := range tests {
		got := fn.call(c.args)
		for _, want := range c.want {
			if matchAll(want, got) {
				continue
			}
			t.Errorf("%s(%s) -> %s, want %s", fn.name,
				format(fn.argsFmt, c.args, false),
				format(fn.retsFmt, got, true),
				format(fn.retsFmt, want, true))
		}
	}
}

// Matcher decides whether an actual return value is acceptable.
type Matcher interface {
	// Match reports whether v is acceptable. The parameter type is RetValue so
	// that types do not implement Matcher by accident.
	Match(v RetValue) bool
}

// RetValue is the type of values passed to Matcher.Match.
type RetValue any

// Any matches every value.
var Any Matcher = matcherFunc(func(RetValue) bool { return true })

// Cmp returns a Matcher that compares with go-cmp using opts.
func Cmp(want any, opts ...cmp.Option) Matcher {
	return cmpMatcher{want, opts}
}

type matcherFunc func(RetValue) bool

func (f matcherFunc) Match(v RetValue) bool { return f(v) }

type cmpMatcher struct {
	want any
	opts []cmp.Option
}

func (m cmpMatcher) Match(v RetValue) bool { return cmp.Equal(m.want, v, m.opts...) }

func (m cmpMatcher) String() string { return fmt.Sprint(m.want) }

func matchAll(want, got []any) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if !matchOne(want[i], got[i]) {
			return false
		}
	}
	return true
}

func matchOne(want, got any) bool {
	if m, ok := want.(Matcher); ok {
		return m.Match(got)
	}
	if reflect.DeepEqual(want, got) {
		return true
	}
	wantErr, ok1 := want.(error)
	gotErr, ok2 := got.(error)
	return ok1 && ok2 && errors.Is(gotErr, wantErr)
}

// format renders values for a failure message. With a format string it is
// used as is; otherwise values are joined with commas, and return values other
// than a single one are parenthesized.
func format(f string, values []any, rets bool) string {
	if f != "" {
		return fmt.Sprintf(f, values...)
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	s := strings.Join(parts, ", ")
	if rets && len(values) != 1 {
		s = "(" + s + ")"
	}
	return s
}

func (fn *FnToTest) call(args []any) []any {
	f := reflect.ValueOf(fn.body)
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// A nil argument carries no type; use the zero value of the
			// parameter.
			in[i] = reflect.Zero(paramType(f.Type(), i))
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}
	out := f.Call(in)
	rets := make([]any, len(out))
	for i, v := range out {
		rets[i] = v.Interface()
	}
	return rets
}

func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(i)
}
