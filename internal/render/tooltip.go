// Package render composes the hover tooltip of a line and formats it for the
// different frontends: Neovim floats, terminals and Pango-style markup.
package render

import (
	"strconv"
	"strings"

	"github.com/sokinpui/shgutter/internal/preview"
	"github.com/sokinpui/shgutter/model"
)

// Group names the highlight of a piece of tooltip text. The names double as Neovim
// highlight groups.
type Group string

const (
	GroupNone      Group = ""
	GroupSeparator Group = "ShGutterSeparator"
	GroupCode      Group = "ShGutterCode"
	GroupPreview   Group = "ShGutterPreview"
	GroupError     Group = "ShGutterErrorSpan"
	GroupInserted  Group = "ShGutterInserted"
	GroupHint      Group = "ShGutterHint"
)

// SeverityGroup returns the group used to paint sev in the gutter and tooltip header.
func SeverityGroup(sev model.Severity) Group {
	switch sev {
	case model.SeverityNote:
		return "ShGutterNote"
	case model.SeverityInfo:
		return "ShGutterInfo"
	case model.SeverityWarning:
		return "ShGutterWarn"
	case model.SeverityError:
		return "ShGutterError"
	}
	return "ShGutterUnknown"
}

// Piece is a run of text sharing one group.
type Piece struct {
	Text  string
	Group Group
}

// Line is one line of a composed tooltip. It never contains a newline.
type Line []Piece

// Block is the tooltip content for one diagnostic.
type Block struct {
	Diagnostic model.Diagnostic
	Preview    preview.Preview
}

// Tooltip holds one block per diagnostic covering a line.
type Tooltip struct {
	Line   int
	Blocks []Block
}

// NewTooltip renders the previews of diags, which cover line and were reported
// against text.
func NewTooltip(text string, line int, diags []model.Diagnostic) Tooltip {
	t := Tooltip{Line: line, Blocks: make([]Block, 0, len(diags))}
	for _, d := range diags {
		t.Blocks = append(t.Blocks, Block{Diagnostic: d, Preview: preview.Render(text, d)})
	}
	return t
}

// Compose lays the tooltip out as lines of grouped pieces, blocks separated by an
// empty line.
func Compose(t Tooltip) []Line {
	var b lineBuilder
	for i, block := range t.Blocks {
		if i > 0 {
			b.newline()
			b.newline()
		}
		composeBlock(&b, block)
	}
	return b.finish()
}

func composeBlock(b *lineBuilder, block Block) {
	d := block.Diagnostic
	b.write(strconv.Itoa(d.Span.Line), GroupNone)
	b.write(":", GroupSeparator)
	b.write(strconv.Itoa(d.Span.Column), GroupNone)
	b.write(":", GroupSeparator)
	b.write(" ", GroupNone)
	b.write("SC"+strconv.Itoa(d.Code)+" ", GroupCode)
	b.write("("+d.Severity.Code()+")", SeverityGroup(d.Severity))
	b.write(":", GroupCode)
	b.write(" "+d.Message, GroupNone)

	note := block.Preview.Note
	b.newline()
	b.write(note.Prefix, GroupPreview)
	b.write(note.Error, GroupError)
	b.write(note.Suffix, GroupPreview)

	if block.Preview.Fix == nil {
		return
	}
	b.newline()
	b.write("Did you mean:", GroupHint)
	b.newline()
	for _, seg := range block.Preview.Fix {
		group := GroupPreview
		if seg.Kind == preview.Inserted {
			group = GroupInserted
		}
		b.write(seg.Text, group)
	}
}

type lineBuilder struct {
	lines []Line
	cur   Line
}

func (b *lineBuilder) write(text string, group Group) {
	for i, part := range strings.Split(text, "\n") {
		if i > 0 {
			b.newline()
		}
		if part != "" {
			b.cur = append(b.cur, Piece{Text: part, Group: group})
		}
	}
}

func (b *lineBuilder) newline() {
	b.lines = append(b.lines, b.cur)
	b.cur = nil
}

func (b *lineBuilder) finish() []Line {
	if len(b.cur) > 0 || len(b.lines) > 0 {
		b.newline()
	}
	return b.lines
}

// String returns the line's text without highlighting.
func (l Line) String() string {
	var sb strings.Builder
	for _, p := range l {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
