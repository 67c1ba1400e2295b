package errutil

import (
	"errors"
	"io"
	"os"
	"testing"

	"src.elabenv.dev/pkg/tt"
)

var (
	err1 = errors.New("error 1")
	err2 = errors.New("error 2")
	err3 = errors.New("error 3")
)

func TestMulti(t *testing.T) {
	tt.Test(t, tt.Fn("Multi", Multi), tt.Table{
		tt.Args().Rets(nil),
		tt.Args(nil, nil).Rets(nil),
		tt.Args(err1).Rets(err1),
		tt.Args(nil, err1, nil).Rets(err1),
		tt.Args(err1, err2).Rets(&MultiError{[]error{err1, err2}}),
		tt.Args(Multi(err1, err2), err3).Rets(&MultiError{[]error{err1, err2, err3}}),
		tt.Args(err1, Multi(nil, err2, err3)).Rets(&MultiError{[]error{err1, err2, err3}}),
	})
}

func TestMulti_Error(t *testing.T) {
	want := "multiple errors: error 1; error 2"
	if got := Multi(err1, err2).Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMulti_Is(t *testing.T) {
	err := Multi(io.EOF, os.ErrNotExist)
	if !errors.Is(err, io.EOF) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("errors.Is does not see through Multi")
	}
	var me *MultiError
	if !errors.As(err, &me) || len(me.Errs) != 2 {
		t.Errorf("errors.As does not find the *MultiError")
	}
	if errors.Is(err, err1) {
		t.Errorf("errors.Is reports an error that is not there")
	}
}
