// Package ui prints colored status lines and check progress to stderr.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	TraceColor   = color.New(color.FgHiBlack)
)

// SetColor forces colored output on or off.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

// Trace prints engine internals for --trace.
func Trace(format string, a ...interface{}) {
	TraceColor.Fprintf(os.Stderr, "trace: "+format+"\n", a...)
}

// PrintCheckSummary lists the inputs of a check run by outcome.
func PrintCheckSummary(clean, flagged, failed []string) {
	writeCheckSummary(os.Stderr, clean, flagged, failed)
}

func writeCheckSummary(w io.Writer, clean, flagged, failed []string) {
	HeaderColor.Fprintln(w, "\n--- Check Summary ---")
	if len(clean)+len(flagged)+len(failed) == 0 {
		fmt.Fprintln(w, "No scripts were checked.")
		return
	}

	groups := []struct {
		c     *color.Color
		title string
		names []string
	}{
		{SuccessColor, "%d script(s) without findings:", clean},
		{WarningColor, "%d script(s) with findings:", flagged},
		{ErrorColor, "Failed to check %d script(s):", failed},
	}
	for _, g := range groups {
		if len(g.names) == 0 {
			continue
		}
		g.c.Fprintf(w, g.title+"\n", len(g.names))
		for _, name := range g.names {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	}
}

// ProgressBar redraws a single progress line in place.
type ProgressBar struct {
	w      io.Writer
	total  int
	prefix string
	bar    progress.Model
}

func NewProgressBar(w io.Writer, total int, prefix string) *ProgressBar {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return &ProgressBar{w: w, total: total, prefix: prefix, bar: bar}
}

// Set draws the bar with current of total items done.
func (p *ProgressBar) Set(current int) {
	if p.total <= 0 {
		return
	}
	percent := float64(min(current, p.total)) / float64(p.total)
	fmt.Fprintf(p.w, "\r%s %s [%d/%d]", p.prefix, p.bar.ViewAs(percent), current, p.total)
}

func (p *ProgressBar) Finish() {
	fmt.Fprintln(p.w)
}
