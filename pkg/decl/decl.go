// Package decl defines the declaration records stored in an environment.
//
// An environment treats declarations as opaque values keyed by their names;
// the fields other than Name are for the kernel and the compiler.
package decl

import "src.elabenv.dev/pkg/name"

// Kind is the kind of a declaration.
type Kind string

// Declaration kinds.
const (
	Axiom       Kind = "axiom"
	Definition  Kind = "def"
	Theorem     Kind = "theorem"
	Opaque      Kind = "opaque"
	Quotient    Kind = "quot"
	Inductive   Kind = "inductive"
	Constructor Kind = "ctor"
	Recursor    Kind = "rec"
)

// Declaration is a declaration record.
type Declaration struct {
	Name       name.Name   `yaml:"name"`
	Kind       Kind        `yaml:"kind"`
	LevelNames []name.Name `yaml:"levels,omitempty"`
	Type       string      `yaml:"type"`
	Value      string      `yaml:"value,omitempty"`
	Unsafe     bool        `yaml:"unsafe,omitempty"`
}

// New returns a declaration with the given name, kind and type.
func New(n name.Name, kind Kind, typ string) Declaration {
	return Declaration{Name: n, Kind: kind, Type: typ}
}

// WithValue returns a copy of d with the given value.
func (d Declaration) WithValue(value string) Declaration {
	d.Value = value
	return d
}

// HasValue reports whether d carries a value, as definitions and theorems do.
func (d Declaration) HasValue() bool {
	return d.Value != ""
}
