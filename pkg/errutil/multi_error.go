// Package errutil contains utilities for working with errors.
package errutil

import "strings"

// MultiError is a combination of several non-nil errors, returned by Multi.
type MultiError struct {
	Errs []error
}

// Multi combines errors into one, ignoring nil arguments. It returns nil if no
// argument is non-nil, the only non-nil argument if there is one, and a
// *MultiError otherwise. A *MultiError argument contributes its errors rather
// than itself, so nested calls produce a flat list.
func Multi(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case *MultiError:
			nonNil = append(nonNil, err.Errs...)
		default:
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	}
	return &MultiError{nonNil}
}

func (me *MultiError) Error() string {
	msgs := make([]string, len(me.Errs))
	for i, err := range me.Errs {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

// Unwrap returns the combined errors, for errors.Is and errors.As.
func (me *MultiError) Unwrap() []error { return me.Errs }
