package store

import (
	"path/filepath"

	"src.elabenv.dev/pkg/must"
	"src.elabenv.dev/pkg/testutil"
)

// MustTempStore returns a Store backed by a temporary file in dir. The Store
// is closed when the test finishes.
func MustTempStore(c testutil.Cleanuper, dir string) DBStore {
	st := must.OK1(NewStore(filepath.Join(dir, "store.db")))
	c.Cleanup(func() { must.OK(st.Close()) })
	return st
}
