package app

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/model"
)

// jsonDiagnostic is one entry of the json output format.
type jsonDiagnostic struct {
	Input     string `json:"input"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
	Level     string `json:"level"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Fixable   bool   `json:"fixable"`
}

// WriteReport prints the diagnostics of results to w in format, one of text, markup
// or json. Failed units are skipped; they show up in the summary. styles may be nil.
func WriteReport(w io.Writer, results []Result, format string, styles render.Styles) error {
	switch format {
	case "json":
		return writeJSON(w, results)
	case "markup":
		return writeTooltips(w, results, func(t render.Tooltip) string { return render.Markup(t) })
	case "text", "":
		return writeTooltips(w, results, func(t render.Tooltip) string { return render.Text(t, styles) })
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeTooltips(w io.Writer, results []Result, format func(render.Tooltip) string) error {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		snap := r.Snapshot
		for _, line := range snap.Lines() {
			diags := startingOn(snap.CoveringLine(line), line)
			if len(diags) == 0 {
				continue
			}
			tip := render.NewTooltip(snap.Text(), line, diags)
			if _, err := fmt.Fprintf(w, "%s:%d\n%s\n\n", r.Unit.Name, line+r.Unit.LineOffset, format(tip)); err != nil {
				return err
			}
		}
	}
	return nil
}

// startingOn keeps the diagnostics that start on line, so that multi-line ones are
// printed once.
func startingOn(diags []model.Diagnostic, line int) []model.Diagnostic {
	return slices.DeleteFunc(diags, func(d model.Diagnostic) bool { return d.Span.Line != line })
}

func writeJSON(w io.Writer, results []Result) error {
	out := []jsonDiagnostic{}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, d := range r.Snapshot.Diagnostics() {
			if !d.FromStdin() {
				continue
			}
			out = append(out, jsonDiagnostic{
				Input:     r.Unit.Name,
				Line:      d.Span.Line + r.Unit.LineOffset,
				Column:    d.Span.Column,
				EndLine:   d.Span.EndLine + r.Unit.LineOffset,
				EndColumn: d.Span.EndColumn,
				Level:     d.Severity.Code(),
				Code:      d.Code,
				Message:   d.Message,
				Fixable:   d.HasFix(),
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
