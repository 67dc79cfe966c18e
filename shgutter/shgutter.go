// Package shgutter checks shell scripts with shellcheck and renders the findings the
// way the editor integrations show them.
package shgutter

import (
	"context"
	"fmt"
	"os"

	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/internal/shellcheck"
	"github.com/sokinpui/shgutter/model"
)

var (
	// ErrToolNotFound is returned when the shellcheck executable cannot be found.
	ErrToolNotFound = shellcheck.ErrToolNotFound
	// ErrProcessStart is returned when shellcheck could not be started.
	ErrProcessStart = shellcheck.ErrProcessStart
)

// Config for using shgutter as a library.
type Config struct {
	// Shellcheck is the executable to run; "shellcheck" from $PATH when empty.
	Shellcheck string
	// Args are extra shellcheck arguments, e.g. "--shell=bash".
	Args []string
}

// Result holds the findings about one script.
type Result struct {
	text  string
	snap  *shellcheck.Snapshot
	Diags []model.Diagnostic
}

// Check runs shellcheck on text with dir as working directory, the current one when
// empty. Findings about sourced files are dropped.
func Check(ctx context.Context, text, dir string, config Config) (*Result, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = wd
	}
	runner := &shellcheck.Runner{Path: config.Shellcheck, Args: config.Args}
	snap, err := shellcheck.Check(ctx, runner, dir, text)
	if err != nil {
		return nil, err
	}

	r := &Result{text: text, snap: snap}
	for _, d := range snap.Diagnostics() {
		if d.FromStdin() {
			r.Diags = append(r.Diags, d)
		}
	}
	return r, nil
}

// Lines returns the lines with at least one finding, in ascending order.
func (r *Result) Lines() []int {
	return r.snap.Lines()
}

// Worst returns the highest severity reported on line.
func (r *Result) Worst(line int) (model.Severity, bool) {
	return r.snap.WorstOnLine(line)
}

// Tooltip renders the findings covering line as plain text, with a preview of every
// suggested fix. It returns "" for lines without findings.
func (r *Result) Tooltip(line int) string {
	diags := r.snap.CoveringLine(line)
	if len(diags) == 0 {
		return ""
	}
	return render.Text(render.NewTooltip(r.text, line, diags), nil)
}

// Markup renders the findings covering line as Pango markup.
func (r *Result) Markup(line int) string {
	diags := r.snap.CoveringLine(line)
	if len(diags) == 0 {
		return ""
	}
	return render.Markup(render.NewTooltip(r.text, line, diags))
}
