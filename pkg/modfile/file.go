package modfile

import (
	"os"
	"path/filepath"

	"src.elabenv.dev/pkg/errutil"
)

// Ext is the extension of module files.
const Ext = ".emod"

// Read reads and decodes a module file. All failures are reported as
// *ModuleReadError.
func Read(path string) (*ModuleData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModuleReadError{path, err}
	}
	d, err := Decode(data)
	if err != nil {
		return nil, &ModuleReadError{path, err}
	}
	return d, nil
}

// Write encodes module data and writes it to path. The file is written to a
// temporary file in the same directory first and renamed into place, so that
// readers never see a partially written module.
func Write(path string, d *ModuleData) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	err = errutil.Multi(err, f.Close())
	if err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return err
	}
	return nil
}
