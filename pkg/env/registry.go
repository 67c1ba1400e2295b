package env

import (
	"sync"

	"github.com/tevino/abool/v2"
	"src.elabenv.dev/pkg/name"
	"src.elabenv.dev/pkg/persistent/vector"
)

// Registry hands out extension slots. It starts in the initialization phase,
// during which extensions may be registered but no environment may be
// created; Freeze ends that phase for good.
//
// Every environment built from a registry has one state slot per extension
// registered with it, so registration must be complete before the first
// environment exists. A Registry is typically populated by a single startup
// function and then shared read-only.
type Registry struct {
	initializing *abool.AtomicBool

	// Guards the fields below during the initialization phase; they are
	// read-only after Freeze.
	mu         sync.Mutex
	initials   []any
	persistent []persistentExtension
	names      map[name.Name]bool

	modList *Extension[vector.Vector[Modification]]
}

// NewRegistry returns a registry in the initialization phase. The registry
// comes with the modification list extension already registered in slot 0.
func NewRegistry() *Registry {
	r := &Registry{initializing: abool.NewBool(true), names: map[name.Name]bool{}}
	modList, err := RegisterExtension(r, vector.Vector[Modification]{})
	if err != nil {
		// Cannot happen: r is still initializing.
		panic(err)
	}
	r.modList = modList
	return r
}

// Freeze ends the initialization phase. Calling it more than once is
// harmless.
func (r *Registry) Freeze() {
	r.initializing.UnSet()
}

// IsInitializing reports whether r is still in the initialization phase.
func (r *Registry) IsInitializing() bool {
	return r.initializing.IsSet()
}

// NumExtensions returns the number of extensions registered so far, which is
// also the size of the state array of environments built from r.
func (r *Registry) NumExtensions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.initials)
}

// InitialStates returns the initial state of every extension, in slot order.
func (r *Registry) InitialStates() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.initials...)
}

func (r *Registry) register(initial any) (int, error) {
	if !r.IsInitializing() {
		return 0, ErrRegistrationClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initials = append(r.initials, initial)
	return len(r.initials) - 1, nil
}

func (r *Registry) persistentExtensions() []persistentExtension {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]persistentExtension(nil), r.persistent...)
}
