package env

import (
	"fmt"
	"slices"
)

// Extension is a typed accessor for one slot of per-environment state. It is
// the only way to read or write that slot, which is what makes the type
// assertions inside it safe.
type Extension[S any] struct {
	slot    int
	initial S
}

// RegisterExtension registers an extension with the given initial state. It
// fails with ErrRegistrationClosed once r has been frozen.
func RegisterExtension[S any](r *Registry, initial S) (*Extension[S], error) {
	slot, err := r.register(initial)
	if err != nil {
		return nil, err
	}
	return &Extension[S]{slot, initial}, nil
}

// Slot returns the index of the extension's state in every environment.
func (x *Extension[S]) Slot() int { return x.slot }

// Initial returns the state the extension was registered with.
func (x *Extension[S]) Initial() S { return x.initial }

// GetState returns the extension's state in e. If e has no slot for the
// extension, the initial state is returned.
func (x *Extension[S]) GetState(e *Environment) S {
	if x.slot >= len(e.extensions) {
		return x.initial
	}
	return x.cast(e.extensions[x.slot])
}

// SetState returns an environment that is e with the extension's state
// replaced. It panics if e was built from a registry the extension was not
// registered with.
func (x *Extension[S]) SetState(e *Environment, s S) *Environment {
	exts := x.checkedClone(e)
	exts[x.slot] = s
	ne := *e
	ne.extensions = exts
	return &ne
}

// ModifyState returns an environment that is e with f applied to the
// extension's state.
func (x *Extension[S]) ModifyState(e *Environment, f func(S) S) *Environment {
	exts := x.checkedClone(e)
	exts[x.slot] = f(x.cast(exts[x.slot]))
	ne := *e
	ne.extensions = exts
	return &ne
}

func (x *Extension[S]) checkedClone(e *Environment) []any {
	if x.slot >= len(e.extensions) {
		panic(fmt.Sprintf("environment has %d extension slots, no slot %d", len(e.extensions), x.slot))
	}
	return slices.Clone(e.extensions)
}

func (x *Extension[S]) cast(v any) S {
	if v == nil {
		var zero S
		return zero
	}
	s, ok := v.(S)
	if !ok {
		panic(fmt.Sprintf("extension slot %d holds %T, want %T", x.slot, v, x.initial))
	}
	return s
}
