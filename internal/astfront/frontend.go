package astfront

import (
	"bytes"
	"fmt"
	"os/exec"
)

// CommandRunner runs an external command and returns its stdout. It is
// the seam for invoking the C/C++ front end: production code shells
// out, tests supply a fake.
type CommandRunner interface {
	Run(name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// ExecCommandRunner runs commands with os/exec.
type ExecCommandRunner struct{}

// Run implements CommandRunner using os/exec.
func (ExecCommandRunner) Run(name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.Command(name, args...)
	var outb, errb bytes.Buffer
	cmd.Stdout = &outb
	cmd.Stderr = &errb
	err := cmd.Run()
	return outb.Bytes(), errb.Bytes(), err
}

// FrontEnd ingests one translation unit through an external front end.
type FrontEnd struct {
	runner    CommandRunner
	compiler  string
	dumpStdlg func(filename string, dump []byte) // optional, for --dump-asts
}

// NewFrontEnd builds a FrontEnd that shells out to compiler (e.g.
// "clang++") for each translation unit.
func NewFrontEnd(runner CommandRunner, compiler string) *FrontEnd {
	if compiler == "" {
		compiler = "clang++"
	}
	return &FrontEnd{runner: runner, compiler: compiler}
}

// OnDump registers a callback invoked with the raw AST dump bytes for
// every parsed file, used to implement --dump-asts.
func (f *FrontEnd) OnDump(cb func(filename string, dump []byte)) {
	f.dumpStdlg = cb
}

// Parse runs `<compiler> -Xclang -ast-dump=json -fsyntax-only <flags...>
// filename` and decodes the result into a Node tree. flags are the
// passthrough compiler flags from the CLI's `--` separator; they are
// forwarded verbatim and never interpreted by cmut itself — compiling
// the translation unit is out of scope.
func (f *FrontEnd) Parse(filename string, flags []string) (*Node, error) {
	args := append([]string{"-Xclang", "-ast-dump=json", "-fsyntax-only"}, flags...)
	args = append(args, filename)

	stdout, stderr, err := f.runner.Run(f.compiler, args...)
	if err != nil {
		return nil, fmt.Errorf("astfront: front end failed on %s: %w: %s", filename, err, stderr)
	}
	if f.dumpStdlg != nil {
		f.dumpStdlg(filename, stdout)
	}
	root, err := Parse(bytes.NewReader(stdout))
	if err != nil {
		return nil, fmt.Errorf("astfront: parsing front-end output for %s: %w", filename, err)
	}
	return root, nil
}
