// Package shellcheck runs shellcheck and turns its json1 report into diagnostic snapshots.
package shellcheck

import (
	"encoding/json"
	"errors"

	"github.com/sokinpui/shgutter/model"
)

// ParseError reports output that is not a json1 report.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "unparseable shellcheck output: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoComments = errors.New(`missing "comments" array`)

type report struct {
	Comments *[]comment `json:"comments"`
}

type comment struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	EndLine   int    `json:"endLine"`
	Column    int    `json:"column"`
	EndColumn int    `json:"endColumn"`
	Level     string `json:"level"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Fix       *fix   `json:"fix"`
}

type fix struct {
	Replacements []replacement `json:"replacements"`
}

type replacement struct {
	Line        int    `json:"line"`
	EndLine     int    `json:"endLine"`
	Column      int    `json:"column"`
	EndColumn   int    `json:"endColumn"`
	Replacement string `json:"replacement"`
}

// Parse decodes a json1 report produced for text and returns the resulting snapshot.
// Any decoding failure is returned as a *ParseError.
func Parse(output []byte, text string) (*Snapshot, error) {
	var r report
	if err := json.Unmarshal(output, &r); err != nil {
		return nil, &ParseError{Err: err}
	}
	if r.Comments == nil {
		return nil, &ParseError{Err: errNoComments}
	}

	diags := make([]model.Diagnostic, 0, len(*r.Comments))
	for _, c := range *r.Comments {
		diags = append(diags, c.toDiagnostic())
	}
	return NewSnapshot(text, diags), nil
}

func (c comment) toDiagnostic() model.Diagnostic {
	d := model.Diagnostic{
		File: c.File,
		Span: model.Span{
			Line:      c.Line,
			Column:    c.Column,
			EndLine:   c.EndLine,
			EndColumn: c.EndColumn,
		},
		Severity: model.SeverityFromCode(c.Level),
		Code:     c.Code,
		Message:  c.Message,
	}
	if c.Fix == nil || len(c.Fix.Replacements) == 0 {
		return d
	}
	d.Fix = make([]model.Replacement, 0, len(c.Fix.Replacements))
	for _, r := range c.Fix.Replacements {
		d.Fix = append(d.Fix, model.Replacement{
			Span: model.Span{
				Line:      r.Line,
				Column:    r.Column,
				EndLine:   r.EndLine,
				EndColumn: r.EndColumn,
			},
			Text: r.Replacement,
		})
	}
	return d
}
