package store

import (
	"errors"
	"strings"

	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/name"
	. "src.elabenv.dev/pkg/store/storedefs"
)

// locationPrefix marks locations returned by Loader.Find that refer to the
// store rather than to a file.
const locationPrefix = "store:"

// Loader is a modfile.Loader that serves modules from a Store, with module
// files found through Fallback taking precedence.
//
// When Fallback finds a file for a module, the stored copy is used only if it
// was read from a file with the same digest; otherwise the file is read and
// stored again. This needs Fallback to implement modfile.Digester; without
// it, files found by Fallback are always read. Modules Fallback cannot find
// are served from the store.
type Loader struct {
	Store    Store
	Fallback modfile.Loader
	// Modules being read from Fallback, keyed by location.
	pending map[string]pendingModule
}

type pendingModule struct {
	name   name.Name
	source string
}

var _ modfile.Loader = (*Loader)(nil)

// Find implements modfile.Loader.
func (l *Loader) Find(m name.Name) (string, error) {
	if l.Fallback != nil {
		location, err := l.Fallback.Find(m)
		if err == nil {
			return l.findFile(m, location), nil
		}
		var notFound *modfile.ModuleNotFoundError
		if !errors.As(err, &notFound) {
			return "", err
		}
	}
	_, err := l.Store.ModuleRevision(m)
	if err == nil {
		return locationPrefix + m.String(), nil
	}
	if !errors.Is(err, ErrNoModule) {
		return "", &modfile.ModuleReadError{Path: locationPrefix + m.String(), Err: err}
	}
	return "", &modfile.ModuleNotFoundError{Module: m}
}

// findFile returns the location to read m from, given that Fallback found it
// at location.
func (l *Loader) findFile(m name.Name, location string) string {
	var source string
	if d, ok := l.Fallback.(modfile.Digester); ok {
		digest, err := d.Digest(location)
		if err != nil {
			logger.Printf("failed to digest %s: %v", location, err)
		} else {
			source = digest
			if stored, err := l.Store.ModuleSource(m); err == nil && stored == source {
				return locationPrefix + m.String()
			}
		}
	}
	if l.pending == nil {
		l.pending = map[string]pendingModule{}
	}
	l.pending[location] = pendingModule{m, source}
	return location
}

// Read implements modfile.Loader.
func (l *Loader) Read(location string) (*modfile.ModuleData, error) {
	if s, ok := strings.CutPrefix(location, locationPrefix); ok {
		m, err := name.Parse(s)
		if err != nil {
			return nil, &modfile.ModuleReadError{Path: location, Err: err}
		}
		d, err := l.Store.Module(m)
		if err != nil {
			return nil, &modfile.ModuleReadError{Path: location, Err: err}
		}
		return d, nil
	}
	if l.Fallback == nil {
		return nil, &modfile.ModuleReadError{Path: location, Err: ErrNoModule}
	}
	d, err := l.Fallback.Read(location)
	if err != nil {
		return nil, err
	}
	if p, ok := l.pending[location]; ok {
		delete(l.pending, location)
		if _, err := l.Store.PutModule(p.name, d, p.source); err != nil {
			logger.Printf("failed to cache module %s: %v", p.name, err)
		} else {
			logger.Printf("cached module %s from %s", p.name, location)
		}
	}
	return d, nil
}
