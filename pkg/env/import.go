package env

import (
	"errors"

	"github.com/ahrtr/gocontainer/set"
	"github.com/edwingeng/deque"
	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/name"
	"src.elabenv.dev/pkg/persistent/hashmap"
)

// ErrNoLoader is returned by ImportModules when modules are requested but no
// loader is given.
var ErrNoLoader = errors.New("no module loader")

// ImportOptions configures ImportModules.
type ImportOptions struct {
	// Locates and reads module files.
	Loader modfile.Loader
	// Replays the modifications saved in each module. Defaults to
	// NoModifications.
	Modifications ModificationCodec
	// Trust level of the new environment.
	TrustLevel uint32
}

type loadedModule struct {
	name     name.Name
	location string
	data     *modfile.ModuleData
}

// ImportModules builds a new environment from the given modules and everything
// they import, transitively. Each module is loaded once, however many times it
// is imported, and the dependencies of a module are loaded before it.
//
// Any failure to find, read or replay a module aborts the import; no
// environment is returned in that case.
func ImportModules(r *Registry, roots []name.Name, opts ImportOptions) (*Environment, error) {
	e, err := Empty(r, opts.TrustLevel)
	if err != nil {
		return nil, err
	}
	if len(roots) > 0 && opts.Loader == nil {
		return nil, ErrNoLoader
	}
	codec := opts.Modifications
	if codec == nil {
		codec = NoModifications
	}

	mods, err := loadModules(opts.Loader, roots)
	if err != nil {
		return nil, err
	}
	logger.Printf("importing %d modules for %v", len(mods), roots)

	constants := newConstantMap()
	importIndex := hashmap.Empty[name.Name, ModuleIdx]()
	modules := make([]name.Name, len(mods))
	for i, mod := range mods {
		modules[i] = mod.name
		for _, d := range mod.data.Constants {
			constants = constants.Insert(d.Name, d)
			importIndex = importIndex.Assoc(d.Name, ModuleIdx(i))
		}
	}

	states := r.InitialStates()
	for _, x := range r.persistentExtensions() {
		if err := x.setImportedEntries(states, mods); err != nil {
			return nil, err
		}
		x.finalize(states)
	}

	e.constants = constants
	e.importIndex = importIndex
	e.extensions = states
	e.imports = append([]name.Name(nil), roots...)
	e.modules = modules
	e.quotInit = len(roots) > 0

	for _, mod := range mods {
		if len(mod.data.Modifications) == 0 {
			continue
		}
		e, err = codec.Perform(e, mod.data.Modifications)
		if err != nil {
			return nil, &modfile.ModuleReadError{Path: mod.location, Err: err}
		}
	}
	// Declarations added from now on belong to the module being elaborated.
	e = e.SwitchToSharedMode()
	logger.Printf("imported %d constants from %d modules", e.NumConstants(), len(mods))
	return e, nil
}

// importFrame is a module whose imports are being loaded.
type importFrame struct {
	mod  *loadedModule
	next int
}

// loadModules loads the transitive closure of roots in dependency order. The
// depth-first walk keeps its own stack so that long import chains do not
// grow the goroutine stack.
func loadModules(l modfile.Loader, roots []name.Name) ([]*loadedModule, error) {
	var mods []*loadedModule
	visited := set.New()
	stack := deque.NewDeque()

	push := func(m name.Name) error {
		if visited.Contains(m) {
			return nil
		}
		visited.Add(m)
		mod, err := loadModule(l, m)
		if err != nil {
			return err
		}
		stack.PushBack(&importFrame{mod: mod})
		return nil
	}

	for _, root := range roots {
		if err := push(root); err != nil {
			return nil, err
		}
		for stack.Len() > 0 {
			f := stack.Back().(*importFrame)
			if f.next < len(f.mod.data.Imports) {
				m := f.mod.data.Imports[f.next]
				f.next++
				if err := push(m); err != nil {
					return nil, err
				}
				continue
			}
			stack.PopBack()
			mods = append(mods, f.mod)
		}
	}
	return mods, nil
}

func loadModule(l modfile.Loader, m name.Name) (*loadedModule, error) {
	location, err := l.Find(m)
	if err != nil {
		return nil, err
	}
	data, err := l.Read(location)
	if err != nil {
		return nil, err
	}
	logger.Printf("loaded module %s from %s", m, location)
	return &loadedModule{m, location, data}, nil
}
