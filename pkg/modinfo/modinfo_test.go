package modinfo

import (
	"path/filepath"
	"testing"

	"src.elabenv.dev/pkg/decl"
	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/must"
	"src.elabenv.dev/pkg/name"
	"src.elabenv.dev/pkg/paths"
	"src.elabenv.dev/pkg/prog"
	"src.elabenv.dev/pkg/prog/progtest"
	"src.elabenv.dev/pkg/testutil"
)

var (
	Test = progtest.Test
	That = progtest.That
)

var program = prog.Composite(FileProgram{}, ImportProgram{})

func writeModules(t *testing.T) string {
	root := t.TempDir()
	must.OK(modfile.Write(filepath.Join(root, "Init"+modfile.Ext), &modfile.ModuleData{
		Constants: []decl.Declaration{
			decl.New(name.New("Nat"), decl.Inductive, "Type"),
			decl.New(name.New("Nat", "zero"), decl.Constructor, "Nat"),
		},
		Entries: []modfile.ExtensionEntries{
			{Extension: name.New("attr", "simp"), Entries: []any{"Nat.zero"}},
		},
		Modifications: []byte("opaque"),
	}))
	must.OK(modfile.Write(filepath.Join(root, "Data", "List"+modfile.Ext), &modfile.ModuleData{
		Imports:   []name.Name{name.New("Init")},
		Constants: []decl.Declaration{decl.New(name.New("List"), decl.Inductive, "Type -> Type")},
	}))
	return root
}

func unsetConfig(t *testing.T) {
	for _, k := range []string{paths.ELABENV_CONFIG, paths.ELABENV_PATH, paths.ELABENV_STORE, paths.ELABENV_TRUST} {
		testutil.Unsetenv(t, k)
	}
}

func TestFileProgram(t *testing.T) {
	root := writeModules(t)
	Test(t, program,
		That(filepath.Join(root, "Init"+modfile.Ext)).
			WritesStdoutContaining("constants: 2").
			WritesStdoutContaining("Nat.zero ctor : Nat").
			WritesStdoutContaining("entries of attr.simp: 1").
			WritesStdoutContaining("modifications: 6 bytes"),
		That(filepath.Join(root, "Missing"+modfile.Ext)).
			ExitsWith(2).
			WritesStderrContaining("failed to read module file"),
	)
}

func TestImportProgram(t *testing.T) {
	unsetConfig(t)
	root := writeModules(t)
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	must.WriteFile(config, "search-path: ["+root+"]\ntrust: 2\n")
	db := filepath.Join(dir, "state", "modules.db")
	flags := []string{"-nocolor", "-config", config, "-dotenv", filepath.Join(dir, ".env"), "-store", db}

	Test(t, program,
		That(append(flags, "Data.List")...).
			WritesStdoutContaining("environment with 3 constants, trust level 2").
			WritesStdoutContaining("0 Init (2 constants)").
			WritesStdoutContaining("1 Data.List (1 constants)"),
		That(append(flags, "Nope")...).
			ExitsWith(2).
			WritesStderrContaining("module Nope not found"),
		That(flags...).
			ExitsWith(2).
			WritesStderrContaining("no module given"),
	)

	// The second import is served from the store.
	testutil.Setenv(t, paths.ELABENV_PATH, t.TempDir())
	Test(t, program,
		That(append(flags[:len(flags):len(flags)], "Data.List")...).
			WritesStdoutContaining("environment with 3 constants"),
	)
}
