// Package modinfo implements the modinfo tool, which shows the contents of
// module files and of the environments built by importing modules.
package modinfo

import (
	"os"
	"path/filepath"
	"strings"

	"src.elabenv.dev/pkg/decl"
	"src.elabenv.dev/pkg/env"
	"src.elabenv.dev/pkg/errutil"
	"src.elabenv.dev/pkg/logutil"
	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/name"
	"src.elabenv.dev/pkg/paths"
	"src.elabenv.dev/pkg/prog"
	"src.elabenv.dev/pkg/store"
)

var logger = logutil.GetLogger("[modinfo] ")

// FileProgram shows module files. It is suitable when every argument is the
// path of a module file.
type FileProgram struct{}

func (FileProgram) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) == 0 {
		return prog.ErrNotSuitable
	}
	for _, arg := range args {
		if !strings.HasSuffix(arg, modfile.Ext) {
			return prog.ErrNotSuitable
		}
	}
	p := newPrinter(fds[1], f.NoColor)
	for _, arg := range args {
		d, err := modfile.Read(arg)
		if err != nil {
			return err
		}
		p.module(arg, d)
	}
	return nil
}

// ImportProgram imports the modules named by the arguments and shows the
// resulting environment.
type ImportProgram struct{}

func (ImportProgram) Run(fds [3]*os.File, f *prog.Flags, args []string) (err error) {
	if len(args) == 0 {
		return prog.BadUsage("no module given")
	}
	roots := make([]name.Name, len(args))
	for i, arg := range args {
		roots[i], err = name.Parse(arg)
		if err != nil {
			return prog.BadUsage("bad module name " + arg + ": " + err.Error())
		}
	}

	sources := paths.DefaultSources()
	if f.Config != "" {
		sources.ConfigFile = f.Config
	}
	sources.DotenvFile = f.Dotenv
	cfg, err := paths.Load(sources)
	if err != nil {
		return err
	}
	if f.Store != "" {
		cfg.StorePath = f.Store
	}

	var loader modfile.Loader = cfg.Loader()
	if cfg.StorePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0700); err != nil {
			return err
		}
		st, openErr := store.NewStore(cfg.StorePath)
		if openErr != nil {
			return openErr
		}
		defer func() { err = errutil.Multi(err, st.Close()) }()
		loader = &store.Loader{Store: st, Fallback: loader}
	}

	r := env.NewRegistry()
	r.Freeze()
	e, err := env.ImportModules(r, roots, env.ImportOptions{
		Loader:        loader,
		Modifications: skipModifications{},
		TrustLevel:    cfg.TrustLevel,
	})
	if err != nil {
		return err
	}
	showEnvironment(newPrinter(fds[1], f.NoColor), e)
	return nil
}

func showEnvironment(p *printer, e *env.Environment) {
	modules := e.ModuleNames()
	counts := make([]int, len(modules))
	e.ForEachConstant(func(d decl.Declaration) bool {
		if idx, ok := e.ModuleIndexFor(d.Name); ok {
			counts[idx]++
		}
		return true
	})
	p.head.Fprintf(p.w, "environment with %d constants, trust level %d\n",
		e.NumConstants(), e.TrustLevel())
	for i, m := range modules {
		p.key.Fprintf(p.w, "  %d ", i)
		p.w.Write([]byte(m.String()))
		p.dim.Fprintf(p.w, " (%d constants)\n", counts[i])
	}
}

// skipModifications is a ModificationCodec that ignores saved modifications.
type skipModifications struct{}

func (skipModifications) Serialize([]env.Modification) ([]byte, error) { return nil, nil }

func (skipModifications) Perform(e *env.Environment, data []byte) (*env.Environment, error) {
	logger.Printf("skipping %d bytes of modifications", len(data))
	return e, nil
}
