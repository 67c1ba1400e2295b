package env

import (
	"fmt"
	"slices"

	"src.elabenv.dev/pkg/lazy"
	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/name"
	"src.elabenv.dev/pkg/persistent/list"
)

// PersistentDescriptor describes a persistent extension: an extension whose
// state is derived by folding entries, and whose entries are saved with each
// module and merged again on import.
type PersistentDescriptor[E, S any] struct {
	// Name identifies the extension's entries in module data; it must be
	// unique among the persistent extensions of a registry.
	Name name.Name
	// Initial is the state before any entry is added.
	Initial S
	// AddEntry folds one entry into the state. imported is true for entries
	// of imported modules and false for entries of the current module.
	AddEntry func(imported bool, s S, entry E) S
	// ExportEntries converts the current module's entries, oldest first, to
	// the entries to save. If nil, all entries are saved as they are.
	ExportEntries func(entries []E) []E
	// Lazy defers folding the imported entries until the state is first
	// read. Otherwise they are folded when the import finishes.
	Lazy bool
}

// PersistentExtension is a typed accessor for a persistent extension.
type PersistentExtension[E, S any] struct {
	desc PersistentDescriptor[E, S]
	ext  *Extension[*persistentState[E, S]]
}

// persistentState is the value stored in an environment's slot for a
// persistent extension. It is never modified after being stored.
type persistentState[E, S any] struct {
	// Entries of each imported module, by module index.
	importedEntries [][]E
	// Fold of all imported entries.
	imported *lazy.Value[S]
	// Entries of the current module, newest first.
	entries *list.List[E]
	// Fold of imported and entries. Whether it has been forced is what
	// decides whether AddEntry advances it eagerly.
	state *lazy.Value[S]
}

// persistentExtension is the type-erased view of a PersistentExtension used
// when importing and saving modules.
type persistentExtension interface {
	extName() name.Name
	setImportedEntries(states []any, mods []*loadedModule) error
	finalize(states []any)
	exportEntries(e *Environment) []any
}

// RegisterPersistentExtension registers a persistent extension. It fails with
// ErrRegistrationClosed once r has been frozen, and with
// *DuplicateExtensionNameError if the name is taken.
func RegisterPersistentExtension[E, S any](r *Registry, desc PersistentDescriptor[E, S]) (*PersistentExtension[E, S], error) {
	if !r.IsInitializing() {
		return nil, ErrRegistrationClosed
	}
	if desc.AddEntry == nil {
		return nil, fmt.Errorf("persistent extension %s has no AddEntry function", desc.Name)
	}
	r.mu.Lock()
	if r.names[desc.Name] {
		r.mu.Unlock()
		return nil, &DuplicateExtensionNameError{desc.Name}
	}
	r.names[desc.Name] = true
	r.mu.Unlock()

	initial := &persistentState[E, S]{
		imported: lazy.Ready(desc.Initial),
		entries:  list.Empty[E](),
		state:    lazy.Ready(desc.Initial),
	}
	ext, err := RegisterExtension(r, initial)
	if err != nil {
		return nil, err
	}
	x := &PersistentExtension[E, S]{desc, ext}

	r.mu.Lock()
	r.persistent = append(r.persistent, x)
	r.mu.Unlock()
	return x, nil
}

// Name returns the name of the extension.
func (x *PersistentExtension[E, S]) Name() name.Name { return x.desc.Name }

// Slot returns the index of the extension's state in every environment.
func (x *PersistentExtension[E, S]) Slot() int { return x.ext.Slot() }

// AddEntry returns an environment with entry added to the current module. If
// the state has already been computed, it is advanced by one step, so that
// adding n entries and reading the state after each costs n steps in total.
func (x *PersistentExtension[E, S]) AddEntry(e *Environment, entry E) *Environment {
	return x.ext.ModifyState(e, func(s *persistentState[E, S]) *persistentState[E, S] {
		ns := &persistentState[E, S]{
			importedEntries: s.importedEntries,
			imported:        s.imported,
			entries:         s.entries.Cons(entry),
		}
		if d, ok := s.state.Peek(); ok {
			ns.state = lazy.Ready(x.desc.AddEntry(false, d, entry))
		} else {
			ns.state = x.stateThunk(ns)
		}
		return ns
	})
}

// GetEntries returns the current module's entries, oldest first.
func (x *PersistentExtension[E, S]) GetEntries(e *Environment) []E {
	return x.ext.GetState(e).entries.Reversed()
}

// GetModuleEntries returns the entries the imported module with the given
// index added, as a fresh slice. An index without a module yields no entries.
func (x *PersistentExtension[E, S]) GetModuleEntries(e *Environment, idx ModuleIdx) []E {
	imported := x.ext.GetState(e).importedEntries
	if int(idx) >= len(imported) {
		return nil
	}
	return slices.Clone(imported[idx])
}

// GetState returns the fold of all imported entries and the current module's
// entries. The result is memoized.
func (x *PersistentExtension[E, S]) GetState(e *Environment) S {
	return x.ext.GetState(e).state.Force()
}

// ForceState returns an environment in which the state has been computed.
func (x *PersistentExtension[E, S]) ForceState(e *Environment) *Environment {
	s := x.ext.GetState(e)
	if s.state.IsForced() {
		return e
	}
	return x.ext.SetState(e, &persistentState[E, S]{
		importedEntries: s.importedEntries,
		imported:        s.imported,
		entries:         s.entries,
		state:           lazy.Ready(s.state.Force()),
	})
}

// stateThunk returns a deferred fold of s.imported with s.entries.
func (x *PersistentExtension[E, S]) stateThunk(s *persistentState[E, S]) *lazy.Value[S] {
	return lazy.New(func() S {
		d := s.imported.Force()
		for _, entry := range s.entries.Reversed() {
			d = x.desc.AddEntry(false, d, entry)
		}
		return d
	})
}

func (x *PersistentExtension[E, S]) extName() name.Name { return x.desc.Name }

func (x *PersistentExtension[E, S]) setImportedEntries(states []any, mods []*loadedModule) error {
	s := x.ext.cast(states[x.Slot()])
	importedEntries := make([][]E, len(mods))
	for i, mod := range mods {
		raws := mod.data.EntriesFor(x.desc.Name)
		if len(raws) == 0 {
			continue
		}
		entries := make([]E, len(raws))
		for j, raw := range raws {
			entry, err := modfile.DecodeEntry[E](raw)
			if err != nil {
				return &modfile.ModuleReadError{
					Path: mod.location,
					Err:  fmt.Errorf("entry %d of extension %s: %w", j, x.desc.Name, err)}
			}
			entries[j] = entry
		}
		importedEntries[i] = entries
	}
	states[x.Slot()] = &persistentState[E, S]{
		importedEntries: importedEntries,
		imported:        s.imported,
		entries:         s.entries,
		state:           s.state,
	}
	return nil
}

func (x *PersistentExtension[E, S]) finalize(states []any) {
	s := x.ext.cast(states[x.Slot()])
	importedEntries := s.importedEntries
	imported := lazy.New(func() S {
		d := x.desc.Initial
		for _, entries := range importedEntries {
			for _, entry := range entries {
				d = x.desc.AddEntry(true, d, entry)
			}
		}
		return d
	})
	ns := &persistentState[E, S]{
		importedEntries: importedEntries,
		imported:        imported,
		entries:         list.Empty[E](),
	}
	if x.desc.Lazy {
		ns.state = x.stateThunk(ns)
	} else {
		ns.state = lazy.Ready(imported.Force())
	}
	states[x.Slot()] = ns
}

func (x *PersistentExtension[E, S]) exportEntries(e *Environment) []any {
	entries := x.GetEntries(e)
	if x.desc.ExportEntries != nil {
		entries = x.desc.ExportEntries(entries)
	}
	raws := make([]any, len(entries))
	for i, entry := range entries {
		raws[i] = entry
	}
	return raws
}
