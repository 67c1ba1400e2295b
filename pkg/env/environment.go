// Package env implements environments: immutable, versioned symbol tables
// that accumulate declarations and extension state while a module is
// elaborated, and that are rebuilt from module files on import.
//
// Every operation that changes an environment returns a new one. The old one
// stays valid and unchanged, and shares most of its structure with the new
// one, so environments can be read from any number of goroutines.
package env

import (
	"src.elabenv.dev/pkg/decl"
	"src.elabenv.dev/pkg/logutil"
	"src.elabenv.dev/pkg/name"
	"src.elabenv.dev/pkg/persistent/hashmap"
	"src.elabenv.dev/pkg/smap"
)

var logger = logutil.GetLogger("[env] ")

// ModuleIdx is the position of a module in the dependency-ordered list of
// modules an environment was imported from.
type ModuleIdx uint32

// Environment is an immutable symbol table. The zero value is not usable;
// environments come from Empty or ImportModules.
type Environment struct {
	registry    *Registry
	constants   smap.Map[name.Name, decl.Declaration]
	importIndex hashmap.Map[name.Name, ModuleIdx]
	extensions  []any
	trustLevel  uint32
	quotInit    bool
	// Modules requested by the import that built this environment.
	imports []name.Name
	// All imported modules, in dependency order.
	modules []name.Name
}

// Empty returns an environment with no declarations and the initial state of
// every extension of r. It fails with ErrInitializationInProgress if r has not
// been frozen.
func Empty(r *Registry, trustLevel uint32) (*Environment, error) {
	if r.IsInitializing() {
		return nil, ErrInitializationInProgress
	}
	return &Environment{
		registry:    r,
		constants:   newConstantMap(),
		importIndex: hashmap.Empty[name.Name, ModuleIdx](),
		extensions:  r.InitialStates(),
		trustLevel:  trustLevel,
	}, nil
}

func newConstantMap() smap.Map[name.Name, decl.Declaration] {
	return smap.New[name.Name, decl.Declaration](name.QuickCmp, name.Name.Hash)
}

// Registry returns the registry e was built from.
func (e *Environment) Registry() *Registry { return e.registry }

// Add returns an environment with d added, replacing any declaration with the
// same name.
func (e *Environment) Add(d decl.Declaration) *Environment {
	ne := *e
	ne.constants = e.constants.Insert(d.Name, d)
	return &ne
}

// Find looks up a declaration by name.
func (e *Environment) Find(n name.Name) (decl.Declaration, bool) {
	return e.constants.Find(n)
}

// Contains reports whether e has a declaration with the given name.
func (e *Environment) Contains(n name.Name) bool {
	return e.constants.Contains(n)
}

// NumConstants returns the number of declarations in e.
func (e *Environment) NumConstants() int {
	return e.constants.Len()
}

// ForEachConstant calls f on every declaration in e, in no particular order,
// stopping early if f returns false.
func (e *Environment) ForEachConstant(f func(decl.Declaration) bool) {
	e.constants.ForEach(func(_ name.Name, d decl.Declaration) bool { return f(d) })
}

// MarkQuotientInitialized returns an environment with the quotient flag set.
func (e *Environment) MarkQuotientInitialized() *Environment {
	ne := *e
	ne.quotInit = true
	return &ne
}

// IsQuotientInitialized reports whether the quotient flag is set.
func (e *Environment) IsQuotientInitialized() bool { return e.quotInit }

// TrustLevel returns the trust level e was created with.
func (e *Environment) TrustLevel() uint32 { return e.trustLevel }

// SwitchToSharedMode returns an environment whose declaration index has moved
// to its hash-table stage; see smap.Map.Switch. Declarations added afterwards
// are what MkModuleData writes out.
func (e *Environment) SwitchToSharedMode() *Environment {
	ne := *e
	ne.constants = e.constants.Switch()
	return &ne
}

// ModuleIndexFor returns the index of the imported module that declared n, and
// false if n was not imported.
func (e *Environment) ModuleIndexFor(n name.Name) (ModuleIdx, bool) {
	return e.importIndex.Index(n)
}

// Imports returns the modules requested by the import that built e.
func (e *Environment) Imports() []name.Name {
	return append([]name.Name(nil), e.imports...)
}

// ModuleNames returns every imported module, in dependency order; the position
// of a module is its ModuleIdx.
func (e *Environment) ModuleNames() []name.Name {
	return append([]name.Name(nil), e.modules...)
}
