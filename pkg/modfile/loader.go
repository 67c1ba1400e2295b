package modfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"src.elabenv.dev/pkg/name"
)

// Loader locates and reads module data. It is the collaborator through which
// imports reach module files.
type Loader interface {
	// Find returns a location for the module, or *ModuleNotFoundError.
	Find(m name.Name) (string, error)
	// Read reads the module data at a location returned by Find.
	Read(location string) (*ModuleData, error)
}

// Digester is implemented by loaders that can fingerprint the data at a
// location without decoding it. Equal digests mean equal module data.
type Digester interface {
	Digest(location string) (string, error)
}

// SearchPath is a Loader that looks for module files under a list of root
// directories. Module a.b.c is found at <root>/a/b/c.emod under the first
// root that has it.
type SearchPath []string

var (
	_ Loader   = SearchPath(nil)
	_ Digester = SearchPath(nil)
)

// Find implements Loader.
func (sp SearchPath) Find(m name.Name) (string, error) {
	rel := RelPath(m)
	if rel != "" {
		for _, root := range sp {
			path := filepath.Join(root, rel)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, nil
			}
		}
	}
	return "", &ModuleNotFoundError{m, sp}
}

// Read implements Loader.
func (sp SearchPath) Read(path string) (*ModuleData, error) {
	return Read(path)
}

// RelPath returns the path of the module file for m relative to a search path
// root. It returns "" for the anonymous name and for names with a component
// that cannot be a path element, such as "..", "" or one containing a path
// separator.
func RelPath(m name.Name) string {
	cs := m.Components()
	if len(cs) == 0 {
		return ""
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		if c.IsNum {
			parts[i] = strconv.FormatUint(c.Num, 10)
			continue
		}
		if !isPathElement(c.Str) {
			return ""
		}
		parts[i] = c.Str
	}
	return filepath.Join(parts...) + Ext
}

func isPathElement(s string) bool {
	return s != "" && s != "." && s != ".." &&
		!strings.ContainsRune(s, '/') && !strings.ContainsRune(s, filepath.Separator) &&
		!strings.ContainsRune(s, 0)
}

// Digest implements Digester. The digest is the blake3 checksum of the whole
// file.
func (sp SearchPath) Digest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Checksum(data), nil
}
