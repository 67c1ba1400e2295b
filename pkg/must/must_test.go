package must

import (
	"errors"
	"path/filepath"
	"testing"

	"src.elabenv.dev/pkg/testutil"
)

func TestOK(t *testing.T) {
	if r := testutil.Recover(func() { OK(nil) }); r != nil {
		t.Errorf("OK(nil) panicked with %v", r)
	}
	err := errors.New("bad")
	if r := testutil.Recover(func() { OK(err) }); r != err {
		t.Errorf("OK(err) panicked with %v, want %v", r, err)
	}
	if v := OK1(42, nil); v != 42 {
		t.Errorf("OK1 returned %v", v)
	}
	if r := testutil.Recover(func() { OK2(1, 2, err) }); r != err {
		t.Errorf("OK2 panicked with %v, want %v", r, err)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "file")
	WriteFile(path, "content")
	if got := string(ReadFile(path)); got != "content" {
		t.Errorf("got %q, want content", got)
	}
}

func TestWriteFiles(t *testing.T) {
	dir := WriteFiles(t.TempDir(), map[string]string{
		"top":       "1",
		"lib/A.txt": "2",
	})
	if got := string(ReadFile(filepath.Join(dir, "lib", "A.txt"))); got != "2" {
		t.Errorf("lib/A.txt = %q", got)
	}
	if got := string(ReadFile(filepath.Join(dir, "top"))); got != "1" {
		t.Errorf("top = %q", got)
	}
}
