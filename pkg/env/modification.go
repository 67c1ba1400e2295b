package env

import (
	"errors"

	"src.elabenv.dev/pkg/persistent/vector"
)

// Modification is an opaque record of a change made to an environment that
// is not a declaration or a persistent extension entry. Modifications are
// kept in order, serialized into module data and performed again, in order,
// on import.
type Modification any

// ModificationCodec saves and replays modifications. The environment package
// never looks inside a modification; a codec does.
type ModificationCodec interface {
	// Serialize encodes modifications, oldest first.
	Serialize(mods []Modification) ([]byte, error)
	// Perform replays the modifications encoded in data on e.
	Perform(e *Environment, data []byte) (*Environment, error)
}

// ErrUnexpectedModifications is returned by NoModifications when asked to
// save or replay modifications.
var ErrUnexpectedModifications = errors.New("modifications present but no modification codec configured")

// NoModifications is a ModificationCodec for environments that never record
// modifications.
var NoModifications ModificationCodec = noModifications{}

type noModifications struct{}

func (noModifications) Serialize(mods []Modification) ([]byte, error) {
	if len(mods) > 0 {
		return nil, ErrUnexpectedModifications
	}
	return nil, nil
}

func (noModifications) Perform(e *Environment, data []byte) (*Environment, error) {
	if len(data) > 0 {
		return nil, ErrUnexpectedModifications
	}
	return e, nil
}

// AddModification returns an environment with m appended to the modification
// list.
func (e *Environment) AddModification(m Modification) *Environment {
	return e.registry.modList.ModifyState(e, func(v vector.Vector[Modification]) vector.Vector[Modification] {
		return v.Conj(m)
	})
}

// Modifications returns the modifications recorded in e, oldest first.
func (e *Environment) Modifications() []Modification {
	return e.registry.modList.GetState(e).Slice()
}
