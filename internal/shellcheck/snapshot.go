package shellcheck

import (
	"slices"
	"strings"

	"github.com/sokinpui/shgutter/model"
)

// Snapshot is the immutable result of one completed shellcheck run: the text that was
// submitted and the diagnostics reported for it, indexed by the lines they cover.
type Snapshot struct {
	text   string
	diags  []model.Diagnostic
	byLine map[int][]int
	lines  []int
}

var empty = NewSnapshot("", nil)

// Empty returns the snapshot shown before the first check completes.
func Empty() *Snapshot {
	return empty
}

// NewSnapshot indexes diags, which were reported for text. Only diagnostics about the
// checked input itself are indexed; those pointing into sourced files are kept but
// never returned by line queries.
func NewSnapshot(text string, diags []model.Diagnostic) *Snapshot {
	s := &Snapshot{
		text:   text,
		diags:  slices.Clone(diags),
		byLine: make(map[int][]int),
	}
	last := strings.Count(text, "\n") + 1
	for i, d := range s.diags {
		if !d.FromStdin() {
			continue
		}
		// spans are only indexed over lines the text has
		first, end := max(d.Span.Line, 1), min(d.Span.EndLine, last)
		for line := first; line <= end; line++ {
			if len(s.byLine[line]) == 0 {
				s.lines = append(s.lines, line)
			}
			s.byLine[line] = append(s.byLine[line], i)
		}
	}
	slices.Sort(s.lines)
	return s
}

// Text returns the text the diagnostics were computed against.
func (s *Snapshot) Text() string {
	return s.text
}

// Len returns the number of diagnostics, including those about sourced files.
func (s *Snapshot) Len() int {
	return len(s.diags)
}

// Diagnostics returns a copy of all diagnostics in report order.
func (s *Snapshot) Diagnostics() []model.Diagnostic {
	return slices.Clone(s.diags)
}

// CoveringLine returns the diagnostics about the checked input whose span includes
// line, in report order.
func (s *Snapshot) CoveringLine(line int) []model.Diagnostic {
	idx := s.byLine[line]
	if len(idx) == 0 {
		return nil
	}
	out := make([]model.Diagnostic, len(idx))
	for i, j := range idx {
		out[i] = s.diags[j]
	}
	return out
}

// WorstOnLine returns the highest severity covering line. ok is false when no
// diagnostic covers it.
func (s *Snapshot) WorstOnLine(line int) (sev model.Severity, ok bool) {
	diags := s.CoveringLine(line)
	if len(diags) == 0 {
		return model.SeverityUnknown, false
	}
	return model.WorstSeverity(diags), true
}

// Lines returns the sorted line numbers covered by at least one diagnostic.
func (s *Snapshot) Lines() []int {
	return slices.Clone(s.lines)
}
