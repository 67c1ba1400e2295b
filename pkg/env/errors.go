package env

import (
	"fmt"

	"src.elabenv.dev/pkg/name"
)

// InitializationOrderError is returned when an operation happens in the wrong
// phase of a Registry's life. It indicates a programming error in the host.
type InitializationOrderError struct {
	msg string
}

func (e *InitializationOrderError) Error() string { return e.msg }

var (
	// ErrRegistrationClosed is returned when registering an extension after
	// the registry has been frozen.
	ErrRegistrationClosed = &InitializationOrderError{
		"failed to register environment extension, extensions can only be registered during initialization"}
	// ErrInitializationInProgress is returned when creating an environment
	// from a registry that has not been frozen yet.
	ErrInitializationInProgress = &InitializationOrderError{
		"environment objects cannot be created during initialization"}
)

// DuplicateExtensionNameError is returned when registering a persistent
// extension with a name that is already taken.
type DuplicateExtensionNameError struct {
	Name name.Name
}

func (e *DuplicateExtensionNameError) Error() string {
	return fmt.Sprintf("invalid environment extension, '%s' has already been used", e.Name)
}
