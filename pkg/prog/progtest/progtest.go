// Package progtest runs [prog.Program] instances with captured output, for
// use in tests.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.elabenv.dev/pkg/must"
	"src.elabenv.dev/pkg/prog"
)

// Result is the outcome of running a program.
type Result struct {
	Stdout, Stderr string
	Exit           int
}

// Run runs p with the given arguments, following a program name, and an
// empty stdin.
func Run(p prog.Program, args ...string) Result {
	devNull := must.OK1(os.Open(os.DevNull))
	defer devNull.Close()
	r1, w1 := must.OK2(os.Pipe())
	r2, w2 := must.OK2(os.Pipe())

	// Drain the pipes concurrently so that large outputs do not block.
	stdout := make(chan string, 1)
	stderr := make(chan string, 1)
	go func() { stdout <- string(must.OK1(io.ReadAll(r1))) }()
	go func() { stderr <- string(must.OK1(io.ReadAll(r2))) }()

	exit := prog.Run([3]*os.File{devNull, w1, w2}, append([]string{"modinfo"}, args...), p)
	w1.Close()
	w2.Close()
	return Result{<-stdout, <-stderr, exit}
}

// Case is a test case of Test.
type Case struct {
	args     []string
	exit     int
	contains [2][]string
}

// That returns a new Case that runs the program with the given arguments and
// expects it to exit with 0 by default.
func That(args ...string) *Case { return &Case{args: args} }

// ExitsWith modifies the Case to expect the given exit status.
func (c *Case) ExitsWith(exit int) *Case {
	c.exit = exit
	return c
}

// WritesStdoutContaining modifies the Case to expect stdout to contain s.
func (c *Case) WritesStdoutContaining(s string) *Case {
	c.contains[0] = append(c.contains[0], s)
	return c
}

// WritesStderrContaining modifies the Case to expect stderr to contain s.
func (c *Case) WritesStderrContaining(s string) *Case {
	c.contains[1] = append(c.contains[1], s)
	return c
}

// Test runs the cases against p.
func Test(t *testing.T, p prog.Program, cases ...*Case) {
	t.Helper()
	for _, c := range cases {
		r := Run(p, c.args...)
		if r.Exit != c.exit {
			t.Errorf("%v: exit %d, want %d\nstderr: %s", c.args, r.Exit, c.exit, r.Stderr)
		}
		for i, out := range [2]string{r.Stdout, r.Stderr} {
			for _, s := range c.contains[i] {
				if !strings.Contains(out, s) {
					t.Errorf("%v: %s %q does not contain %q",
						c.args, [2]string{"stdout", "stderr"}[i], out, s)
				}
			}
		}
	}
}
