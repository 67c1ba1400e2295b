// Modinfo shows the contents of module files, or the environment built by
// importing modules:
//
//	modinfo path/to/Module.emod...
//	modinfo Data.List Init
package main

import (
	"os"

	"src.elabenv.dev/pkg/modinfo"
	"src.elabenv.dev/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(modinfo.FileProgram{}, modinfo.ImportProgram{})))
}
