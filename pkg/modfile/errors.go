package modfile

import (
	"fmt"
	"strings"

	"src.elabenv.dev/pkg/name"
)

// ModuleNotFoundError is returned when no module file can be found for a
// module name.
type ModuleNotFoundError struct {
	Module name.Name
	// Where the module was looked for; may be empty.
	SearchPath []string
}

func (e *ModuleNotFoundError) Error() string {
	if len(e.SearchPath) == 0 {
		return fmt.Sprintf("module %s not found", e.Module)
	}
	return fmt.Sprintf("module %s not found in search path %s",
		e.Module, strings.Join(e.SearchPath, ":"))
}

// ModuleReadError is returned when a module file exists but cannot be read or
// decoded.
type ModuleReadError struct {
	Path string
	Err  error
}

func (e *ModuleReadError) Error() string {
	return fmt.Sprintf("failed to read module file %s: %v", e.Path, e.Err)
}

func (e *ModuleReadError) Unwrap() error { return e.Err }
