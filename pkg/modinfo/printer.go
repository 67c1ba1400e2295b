package modinfo

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"src.elabenv.dev/pkg/modfile"
)

type printer struct {
	w    io.Writer
	head *color.Color
	key  *color.Color
	dim  *color.Color
}

// newPrinter returns a printer writing to out, with colors only if out is a
// terminal and noColor is false.
func newPrinter(out *os.File, noColor bool) *printer {
	p := &printer{
		w:    out,
		head: color.New(color.FgCyan, color.Bold),
		key:  color.New(color.FgYellow),
		dim:  color.New(color.Faint),
	}
	if noColor || !isatty.IsTerminal(out.Fd()) {
		for _, c := range []*color.Color{p.head, p.key, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) module(title string, d *modfile.ModuleData) {
	p.head.Fprintln(p.w, title)
	p.key.Fprint(p.w, "  imports:")
	for _, m := range d.Imports {
		fmt.Fprint(p.w, " ", m)
	}
	fmt.Fprintln(p.w)

	p.key.Fprintf(p.w, "  constants: %d\n", len(d.Constants))
	for _, c := range d.Constants {
		fmt.Fprintf(p.w, "    %s ", c.Name)
		p.dim.Fprintf(p.w, "%s : %s\n", c.Kind, c.Type)
	}
	for _, e := range d.Entries {
		p.key.Fprintf(p.w, "  entries of %s: %d\n", e.Extension, len(e.Entries))
	}
	if len(d.Modifications) > 0 {
		p.key.Fprintf(p.w, "  modifications: %d bytes\n", len(d.Modifications))
	}
}
