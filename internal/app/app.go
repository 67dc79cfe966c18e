package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sokinpui/shgutter/cli"
	"github.com/sokinpui/shgutter/internal/fs"
	"github.com/sokinpui/shgutter/internal/parser"
	"github.com/sokinpui/shgutter/internal/shellcheck"
	"github.com/sokinpui/shgutter/internal/source"
)

// ErrFindings is returned by Execute when any checked script has diagnostics.
var ErrFindings = errors.New("shellcheck reported findings")

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// Unit is one script handed to shellcheck.
type Unit struct {
	Name string
	// Dir is the working directory of the check.
	Dir  string
	Text string
	// LineOffset is added to reported lines, for scripts embedded in a larger file.
	LineOffset int
}

// Result is the outcome of checking one unit.
type Result struct {
	Unit     Unit
	Snapshot *shellcheck.Snapshot
	Err      error
}

// Summary is the outcome of a check run.
type Summary struct {
	Results []Result
	Message string
}

// App orchestrates one-shot checks.
type App struct {
	cfg              *cli.Config
	pathResolver     *fs.PathResolver
	sourceProvider   *source.SourceProvider
	launcher         shellcheck.Launcher
	progressCallback ProgressUpdate
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	pathResolver := fs.NewPathResolver(nil)
	return &App{
		cfg:            cfg,
		pathResolver:   pathResolver,
		sourceProvider: source.New(pathResolver, cfg.Clipboard),
		launcher:       cfg.Runner(),
	}, nil
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// Execute checks the scripts named by args, or stdin or the clipboard without args.
func (a *App) Execute(ctx context.Context, args []string) (summary Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	inputs, err := a.sourceProvider.GetInputs(args)
	if err != nil {
		return Summary{}, err
	}
	if len(inputs) == 0 {
		return Summary{Message: "Source is empty. Nothing to check."}, nil
	}

	units, err := a.units(inputs)
	if err != nil {
		return Summary{}, err
	}
	if len(units) == 0 {
		return Summary{Message: "No shell code blocks found. Nothing to check."}, nil
	}

	return Summary{Results: a.CheckAll(ctx, units)}, nil
}

// units turns inputs into checkable scripts, splitting Markdown into its shell blocks.
func (a *App) units(inputs []source.Input) ([]Unit, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get current working directory: %w", err)
	}

	var units []Unit
	for _, in := range inputs {
		dir := wd
		if in.Path != "" {
			if d, err := fs.ResolveProjectFolder(in.Path); err == nil {
				dir = d
			}
		}
		if !a.cfg.Markdown {
			units = append(units, Unit{Name: in.Name, Dir: dir, Text: in.Text})
			continue
		}

		blocks, err := parser.ShellBlocks([]byte(in.Text))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Name, err)
		}
		for _, b := range blocks {
			units = append(units, Unit{
				Name:       filepath.ToSlash(in.Name) + ": " + b.Name,
				Dir:        dir,
				Text:       b.Content,
				LineOffset: b.Line - 1,
			})
		}
	}
	return units, nil
}

// CheckAll runs shellcheck on units concurrently. Results keep the order of units.
func (a *App) CheckAll(ctx context.Context, units []Unit) []Result {
	results := make([]Result, len(units))
	total := len(units)
	if a.progressCallback != nil {
		a.progressCallback(0, total)
	}

	var (
		mu   sync.Mutex
		done int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			snap, err := shellcheck.Check(ctx, a.launcher, u.Dir, u.Text)
			results[i] = Result{Unit: u, Snapshot: snap, Err: err}

			if a.progressCallback != nil {
				mu.Lock()
				done++
				a.progressCallback(done, total)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return results
}

// Partition returns the names of units without findings, with findings and failed.
func (s Summary) Partition() (clean, flagged, failed []string) {
	for _, r := range s.Results {
		switch {
		case r.Err != nil:
			failed = append(failed, r.Unit.Name)
		case len(r.Snapshot.Lines()) > 0:
			flagged = append(flagged, r.Unit.Name)
		default:
			clean = append(clean, r.Unit.Name)
		}
	}
	return clean, flagged, failed
}
