// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import (
	"errors"

	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/name"
)

var (
	// ErrNoModule is returned by Module when the store has no such module.
	ErrNoModule = errors.New("no such module in store")
	// ErrAnonymousModule is returned by PutModule for the anonymous name.
	ErrAnonymousModule = errors.New("cannot store a module without a name")
)

// Store is an interface satisfied by the storage service.
type Store interface {
	// PutModule stores module data together with the digest of the file it
	// was read from, which may be empty.
	PutModule(m name.Name, d *modfile.ModuleData, source string) (int, error)
	Module(m name.Name) (*modfile.ModuleData, error)
	ModuleRevision(m name.Name) (int, error)
	ModuleSource(m name.Name) (string, error)
	DelModule(m name.Name) error
	ModuleNames() ([]name.Name, error)
}
