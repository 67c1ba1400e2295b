// Package must turns error returns into panics. It is for tests, and for the
// few places where an error cannot happen.
package must

import (
	"os"
	"path/filepath"
)

// OK panics with err if it is not nil.
func OK(err error) {
	if err != nil {
		panic(err)
	}
}

// OK1 returns v, or panics with err if it is not nil.
func OK1[T any](v T, err error) T {
	OK(err)
	return v
}

// OK2 returns v1 and v2, or panics with err if it is not nil.
func OK2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	OK(err)
	return v1, v2
}

// ReadFile returns the content of a file.
func ReadFile(path string) []byte {
	return OK1(os.ReadFile(path))
}

// WriteFile writes data to path, creating missing parent directories.
func WriteFile(path, data string) {
	OK(os.MkdirAll(filepath.Dir(path), 0700))
	OK(os.WriteFile(path, []byte(data), 0600))
}

// WriteFiles writes each entry of files to its slash-separated path under
// dir, and returns dir.
func WriteFiles(dir string, files map[string]string) string {
	for rel, data := range files {
		WriteFile(filepath.Join(dir, filepath.FromSlash(rel)), data)
	}
	return dir
}
