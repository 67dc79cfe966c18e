// Package preview renders a diagnostic's erroring span and the text its suggested fix
// would produce.
package preview

import (
	"strings"

	"github.com/sokinpui/shgutter/internal/ranges"
	"github.com/sokinpui/shgutter/model"
)

// Note splits the line holding a diagnostic's start around the erroring span.
type Note struct {
	Prefix string
	Error  string
	Suffix string
}

// Kind classifies the text of a fix preview segment.
type Kind uint8

const (
	Plain Kind = iota
	Inserted
)

// Segment is a run of fix preview text of a single kind.
type Segment struct {
	Text string
	Kind Kind
}

// Preview is the rendering of one diagnostic against the text it was reported for.
type Preview struct {
	Note Note
	// Fix is nil when the diagnostic carries no replacements.
	Fix []Segment
}

// Render builds the note and, when replacements exist, the fix preview of d.
func Render(text string, d model.Diagnostic) Preview {
	return Preview{
		Note: RenderNote(text, d),
		Fix:  RenderFix(text, d),
	}
}

// RenderNote clips d's span to the line it starts on.
func RenderNote(text string, d model.Diagnostic) Note {
	doc := newDocument(text)
	line := d.Span.Line
	lineStart := doc.lineStart(line)
	lineEnd := doc.contentEnd(line)

	start := doc.offset(line, d.Span.Column)
	end := lineEnd
	if d.Span.EndLine == line {
		end = max(doc.offset(line, d.Span.EndColumn), start)
	}

	return Note{
		Prefix: text[lineStart:start],
		Error:  text[start:end],
		Suffix: text[end:lineEnd],
	}
}

// RenderFix applies d's replacements to a copy of text and returns the lines d spans
// in that copy, with the inserted text marked. It returns nil when d has no fix.
func RenderFix(text string, d model.Diagnostic) []Segment {
	if !d.HasFix() {
		return nil
	}
	fixed, inserted := Apply(text, d.Fix)

	doc := newDocument(fixed)
	blockStart := doc.lineStart(d.Span.Line)
	blockEnd := max(doc.lineStart(d.Span.EndLine+1), blockStart)

	segments := []Segment{}
	pos := blockStart
	for _, r := range inserted {
		start := min(max(r.Start, pos), blockEnd)
		end := min(max(r.End, start), blockEnd)
		segments = appendSegment(segments, fixed[pos:start], Plain)
		segments = appendSegment(segments, fixed[start:end], Inserted)
		pos = end
	}
	segments = appendSegment(segments, strings.TrimRight(fixed[pos:blockEnd], "\n"), Plain)
	return segments
}

func appendSegment(segments []Segment, text string, kind Kind) []Segment {
	if text == "" {
		return segments
	}
	return append(segments, Segment{Text: text, Kind: kind})
}

// Apply performs reps on a copy of text in list order and returns the result together
// with the merged byte ranges the inserted texts occupy in it. Every replacement is
// located by positions taken in the original text before any edit; each edit shifts
// the tracked positions of the others.
func Apply(text string, reps []model.Replacement) (string, []ranges.Range) {
	doc := newDocument(text)
	pos := make([]int, 0, 2*len(reps))
	for _, r := range reps {
		pos = append(pos,
			doc.offset(r.Span.Line, r.Span.Column),
			doc.offset(r.Span.EndLine, r.Span.EndColumn),
		)
	}

	scratch := text
	for i, r := range reps {
		lo, hi := pos[2*i], pos[2*i+1]
		if lo > hi {
			lo, hi = hi, lo
		}
		scratch = scratch[:lo] + r.Text + scratch[hi:]
		shift(pos, i, lo, hi, len(r.Text))
	}

	inserted := make([]ranges.Range, 0, len(reps))
	for i := range reps {
		inserted = append(inserted, ranges.Range{Start: pos[2*i], End: pos[2*i+1]})
	}
	return scratch, ranges.Merge(inserted)
}

// shift moves the tracked positions after replacement current turned [lo, hi) into
// n bytes. The current replacement then spans exactly its inserted text. Positions
// of other replacements inside the removed text, or of later ones sitting on an
// insertion point, move past the inserted text so list order is kept.
func shift(pos []int, current, lo, hi, n int) {
	for i := range pos {
		owner := i / 2
		p := pos[i]
		switch {
		case owner == current:
			pos[i] = lo
			if i%2 == 1 {
				pos[i] = lo + n
			}
		case p < lo:
		case p == lo && hi > lo:
		case p == lo:
			if owner > current {
				pos[i] = lo + n
			}
		case p < hi:
			pos[i] = lo + n
		default:
			pos[i] = p + n - (hi - lo)
		}
	}
}
