// Package name implements hierarchical qualified names such as "Nat.add" or
// "foo.bar.1", the keys of every index in an environment.
package name

import (
	"errors"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"src.elabenv.dev/pkg/persistent/hash"
)

// Name is a hierarchical name, made up of string and numeric components. The
// zero value is the anonymous name, which has no components.
//
// Name values are comparable with ==, and two names are equal iff they have
// the same components.
type Name struct {
	// Canonical textual form; components are separated by '.', and string
	// components that would otherwise be ambiguous are quoted with «», with
	// » doubled inside quotes.
	s string
	h uint32
}

// Anonymous is the name with no components.
var Anonymous = Name{}

// Component is one component of a Name.
type Component struct {
	Str   string
	Num   uint64
	IsNum bool
}

func (c Component) String() string {
	if c.IsNum {
		return strconv.FormatUint(c.Num, 10)
	}
	return escape(c.Str)
}

const (
	openQuote  = "«"
	closeQuote = "»"
)

// Str returns the name prefix.s.
func Str(prefix Name, s string) Name {
	return Name{join(prefix.s, escape(s)), hash.DJBCombine(prefix.h, hash.String(s))}
}

// Num returns the name prefix.n.
func Num(prefix Name, n uint64) Name {
	return Name{join(prefix.s, strconv.FormatUint(n, 10)), hash.DJBCombine(prefix.h, hash.UInt64(n))}
}

// New builds a name from string components.
func New(parts ...string) Name {
	n := Anonymous
	for _, part := range parts {
		n = Str(n, part)
	}
	return n
}

// FromComponents builds a name from components.
func FromComponents(cs []Component) Name {
	n := Anonymous
	for _, c := range cs {
		if c.IsNum {
			n = Num(n, c.Num)
		} else {
			n = Str(n, c.Str)
		}
	}
	return n
}

// ErrUnterminatedQuote is returned by Parse when a «-quoted component is not
// closed.
var ErrUnterminatedQuote = errors.New("unterminated « in name")

// ErrEmptyComponent is returned by Parse when a dotted name has an empty
// unquoted component, such as "a..b".
var ErrEmptyComponent = errors.New("empty component in name")

// Parse parses the textual form produced by Name.String. Unquoted components
// made up of digits only are numeric. The empty string parses to Anonymous.
// Inside a quoted component, »» stands for a literal ».
func Parse(s string) (Name, error) {
	cs, err := parseComponents(s)
	if err != nil {
		return Anonymous, err
	}
	return FromComponents(cs), nil
}

// ErrMissingDot is returned by Parse when a quoted component is followed by
// something other than a dot.
var ErrMissingDot = errors.New("expect . after quoted component in name")

// MustParse is like Parse, but panics on error.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// IsAnonymous reports whether n has no components.
func (n Name) IsAnonymous() bool { return n.s == "" }

// String returns the textual form of n, which Parse accepts.
func (n Name) String() string {
	if n.s == "" {
		return "[anonymous]"
	}
	return n.s
}

// Hash returns the hash of n. Equal names have equal hashes.
func (n Name) Hash() uint32 { return n.h }

// Equal reports whether other is a Name equal to n.
func (n Name) Equal(other any) bool {
	m, ok := other.(Name)
	return ok && n == m
}

// Components returns the components of n, root first.
func (n Name) Components() []Component {
	if n.s == "" {
		return nil
	}
	cs, err := parseComponents(n.s)
	if err != nil {
		// Canonical forms are always well-formed.
		panic(err)
	}
	return cs
}

// Prefix returns n without its last component. The prefix of Anonymous is
// Anonymous.
func (n Name) Prefix() Name {
	cs := n.Components()
	if len(cs) == 0 {
		return Anonymous
	}
	return FromComponents(cs[:len(cs)-1])
}

// Last returns the last component of n, and false if n is anonymous.
func (n Name) Last() (Component, bool) {
	cs := n.Components()
	if len(cs) == 0 {
		return Component{}, false
	}
	return cs[len(cs)-1], true
}

// QuickCmp is a total order on names that is cheap to evaluate: names are
// ordered by hash first, and structurally only on hash collision. It returns
// 0 iff a == b. The order is unrelated to the lexicographic order of names.
func QuickCmp(a, b Name) int {
	switch {
	case a.h < b.h:
		return -1
	case a.h > b.h:
		return 1
	}
	return strings.Compare(a.s, b.s)
}

// QuickLt reports whether QuickCmp(a, b) < 0.
func QuickLt(a, b Name) bool { return QuickCmp(a, b) < 0 }

// MarshalYAML encodes n as its textual form.
func (n Name) MarshalYAML() (any, error) {
	return n.s, nil
}

// UnmarshalYAML decodes a name from its textual form.
func (n *Name) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func parseComponents(s string) ([]Component, error) {
	var cs []Component
	for s != "" {
		var c Component
		if strings.HasPrefix(s, openQuote) {
			str, rest, err := unquote(s[len(openQuote):])
			if err != nil {
				return nil, err
			}
			c.Str = str
			s = rest
		} else {
			end := strings.IndexByte(s, '.')
			if end == -1 {
				end = len(s)
			}
			part := s[:end]
			if part == "" {
				return nil, ErrEmptyComponent
			}
			if num, err := strconv.ParseUint(part, 10, 64); err == nil && isDigits(part) {
				c = Component{Num: num, IsNum: true}
			} else {
				c.Str = part
			}
			s = s[end:]
		}
		cs = append(cs, c)
		if s == "" {
			break
		}
		if s[0] != '.' {
			return nil, ErrMissingDot
		}
		s = s[1:]
		if s == "" {
			return nil, ErrEmptyComponent
		}
	}
	return cs, nil
}

func join(prefix, s string) string {
	if prefix == "" {
		return s
	}
	return prefix + "." + s
}

// escape quotes s if it would otherwise be ambiguous. Inside quotes, » is
// doubled.
func escape(s string) string {
	if s == "" || isDigits(s) || strings.ContainsAny(s, ".«»") {
		return openQuote + strings.ReplaceAll(s, closeQuote, closeQuote+closeQuote) + closeQuote
	}
	return s
}

// unquote reads a quoted component body up to its closing », and returns the
// decoded body and the text after the closing ».
func unquote(s string) (string, string, error) {
	var sb strings.Builder
	for {
		end := strings.Index(s, closeQuote)
		if end == -1 {
			return "", "", ErrUnterminatedQuote
		}
		sb.WriteString(s[:end])
		s = s[end+len(closeQuote):]
		if !strings.HasPrefix(s, closeQuote) {
			return sb.String(), s, nil
		}
		sb.WriteString(closeQuote)
		s = s[len(closeQuote):]
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
