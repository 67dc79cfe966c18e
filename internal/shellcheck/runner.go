package shellcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"slices"
	"strings"
)

var (
	// ErrToolNotFound is returned when the shellcheck executable cannot be found.
	ErrToolNotFound = errors.New("shellcheck could not be found in $PATH")
	// ErrProcessStart is returned when shellcheck exists but could not be started.
	ErrProcessStart = errors.New("failed to start shellcheck")
)

// DefaultPath is the executable looked up when Runner.Path is empty.
const DefaultPath = "shellcheck"

// reportArgs make shellcheck follow sourced files and print a json1 report for stdin.
var reportArgs = []string{"--check-sourced", "-f", "json1", "-"}

// Process is a started shellcheck invocation.
// Stdout must be read to EOF before Wait is called.
type Process interface {
	Stdout() io.Reader
	Wait() error
}

// Launcher starts shellcheck on input with dir as working directory.
type Launcher interface {
	Launch(dir, input string) (Process, error)
}

// Runner launches the shellcheck executable.
type Runner struct {
	// Path is the executable; DefaultPath when empty.
	Path string
	// Args are passed before the report arguments.
	Args []string
}

type process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

func (p *process) Stdout() io.Reader { return p.stdout }

func (p *process) Wait() error { return p.cmd.Wait() }

// Launch starts shellcheck with input on its stdin. The process is never killed by
// the runner; callers that lose interest simply stop reading.
func (r *Runner) Launch(dir, input string) (Process, error) {
	path := r.Path
	if path == "" {
		path = DefaultPath
	}
	args := append(slices.Clone(r.Args), reportArgs...)

	cmd := exec.Command(path, args...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(input)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessStart, err)
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrToolNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrProcessStart, err)
	}
	return &process{cmd: cmd, stdout: stdout}, nil
}

// Run launches shellcheck through l and returns its complete output. A non-zero exit
// status is not an error: shellcheck exits 1 whenever it reports something.
// When ctx ends first the process is left to finish on its own.
func Run(ctx context.Context, l Launcher, dir, input string) ([]byte, error) {
	proc, err := l.Launch(dir, input)
	if err != nil {
		return nil, err
	}

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := io.ReadAll(proc.Stdout())
		if err != nil {
			done <- result{err: fmt.Errorf("failed to read shellcheck output: %w", err)}
			return
		}
		var exitErr *exec.ExitError
		if err := proc.Wait(); err != nil && !errors.As(err, &exitErr) {
			done <- result{err: fmt.Errorf("shellcheck did not finish: %w", err)}
			return
		}
		done <- result{out: out}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.out, r.err
	}
}

// Check runs shellcheck on text and parses the report.
func Check(ctx context.Context, l Launcher, dir, text string) (*Snapshot, error) {
	out, err := Run(ctx, l, dir, text)
	if err != nil {
		return nil, err
	}
	return Parse(out, text)
}
