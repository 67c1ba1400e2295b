// Package modfile defines module data, the unit in which an environment is
// saved and from which it is rebuilt, and its on-disk format.
package modfile

import (
	"fmt"

	"gopkg.in/yaml.v3"
	"src.elabenv.dev/pkg/decl"
	"src.elabenv.dev/pkg/name"
)

// ModuleData is everything a module contributes to an environment that imports
// it.
type ModuleData struct {
	// Modules imported by this module, in the order they were requested.
	Imports []name.Name
	// Declarations added by this module.
	Constants []decl.Declaration
	// Entries added by this module to persistent extensions.
	Entries []ExtensionEntries
	// Serialized modification list, opaque to this package.
	Modifications []byte
}

// ExtensionEntries holds the entries a module added to one persistent
// extension.
//
// Entries are opaque to this package. Entries built in memory hold whatever
// the extension stores; entries read from a file are *yaml.Node values that
// the extension decodes with DecodeEntry.
type ExtensionEntries struct {
	Extension name.Name
	Entries   []any
}

// EntriesFor returns the entries the module added to the named extension, or
// nil if it added none.
func (d *ModuleData) EntriesFor(ext name.Name) []any {
	for _, e := range d.Entries {
		if e.Extension == ext {
			return e.Entries
		}
	}
	return nil
}

// DecodeEntry converts an entry as stored in ModuleData to the entry type of
// an extension.
func DecodeEntry[E any](raw any) (E, error) {
	switch v := raw.(type) {
	case E:
		return v, nil
	case *yaml.Node:
		var e E
		if err := v.Decode(&e); err != nil {
			return e, err
		}
		return e, nil
	}
	var zero E
	return zero, fmt.Errorf("cannot use entry of type %T as %T", raw, zero)
}
