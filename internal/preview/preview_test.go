package preview

import (
	"slices"
	"testing"

	"github.com/sokinpui/shgutter/internal/ranges"
	"github.com/sokinpui/shgutter/model"
)

const script = "#!/bin/sh\nfoo=1\necho $foo\n"

func span(line, col, endLine, endCol int) model.Span {
	return model.Span{Line: line, Column: col, EndLine: endLine, EndColumn: endCol}
}

func TestRenderNote(t *testing.T) {
	tests := []struct {
		name string
		text string
		span model.Span
		want Note
	}{
		{
			name: "single line",
			text: script,
			span: span(3, 6, 3, 10),
			want: Note{Prefix: "echo ", Error: "$foo", Suffix: ""},
		},
		{
			name: "clipped to first line",
			text: script,
			span: span(2, 1, 3, 5),
			want: Note{Prefix: "", Error: "foo=1", Suffix: ""},
		},
		{
			name: "multibyte columns",
			text: "echo ñ $x done\n",
			span: span(1, 8, 1, 10),
			want: Note{Prefix: "echo ñ ", Error: "$x", Suffix: " done"},
		},
		{
			name: "column past line end",
			text: "ls\nfoo\n",
			span: span(1, 2, 1, 40),
			want: Note{Prefix: "l", Error: "s", Suffix: ""},
		},
		{
			name: "no trailing newline",
			text: "cd $dir",
			span: span(1, 4, 1, 8),
			want: Note{Prefix: "cd ", Error: "$dir", Suffix: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderNote(tt.text, model.Diagnostic{Span: tt.span})
			if got != tt.want {
				t.Errorf("RenderNote() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplySingleReplacement(t *testing.T) {
	reps := []model.Replacement{{Span: span(1, 6, 1, 10), Text: `"$foo"`}}

	fixed, inserted := Apply("echo $foo\n", reps)
	if fixed != "echo \"$foo\"\n" {
		t.Errorf("Apply() text = %q", fixed)
	}
	want := []ranges.Range{{Start: 5, End: 11}}
	if !slices.Equal(inserted, want) {
		t.Fatalf("Apply() ranges = %v, want %v", inserted, want)
	}
	if got := inserted[0].End - inserted[0].Start; got != len(`"$foo"`) {
		t.Errorf("highlighted length = %d, want %d", got, len(`"$foo"`))
	}
}

func TestApplyAdjacentAndSamePoint(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		reps      []model.Replacement
		wantText  string
		wantRange []ranges.Range
	}{
		{
			name: "adjacent replacements",
			text: "abc\n",
			reps: []model.Replacement{
				{Span: span(1, 1, 1, 2), Text: "X"},
				{Span: span(1, 2, 1, 3), Text: "YY"},
			},
			wantText:  "XYYc\n",
			wantRange: []ranges.Range{{Start: 0, End: 3}},
		},
		{
			name: "insertions at one point keep list order",
			text: "ab\n",
			reps: []model.Replacement{
				{Span: span(1, 2, 1, 2), Text: "1"},
				{Span: span(1, 2, 1, 2), Text: "2"},
			},
			wantText:  "a12b\n",
			wantRange: []ranges.Range{{Start: 1, End: 3}},
		},
		{
			name: "later replacement on an earlier line",
			text: "one\ntwo\n",
			reps: []model.Replacement{
				{Span: span(2, 1, 2, 4), Text: "2"},
				{Span: span(1, 1, 1, 4), Text: "first"},
			},
			wantText:  "first\n2\n",
			wantRange: []ranges.Range{{Start: 0, End: 5}, {Start: 6, End: 7}},
		},
		{
			name: "deletion",
			text: "rm -rf  x\n",
			reps: []model.Replacement{
				{Span: span(1, 8, 1, 9), Text: ""},
			},
			wantText:  "rm -rf x\n",
			wantRange: []ranges.Range{{Start: 7, End: 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed, inserted := Apply(tt.text, tt.reps)
			if fixed != tt.wantText {
				t.Errorf("Apply() text = %q, want %q", fixed, tt.wantText)
			}
			if !slices.Equal(inserted, tt.wantRange) {
				t.Errorf("Apply() ranges = %v, want %v", inserted, tt.wantRange)
			}
		})
	}
}

func TestRenderFix(t *testing.T) {
	d := model.Diagnostic{
		File: model.StdinFile,
		Span: span(3, 6, 3, 10),
		Fix: []model.Replacement{
			{Span: span(3, 6, 3, 6), Text: `"`},
			{Span: span(3, 10, 3, 10), Text: `"`},
		},
	}

	got := RenderFix(script, d)
	want := []Segment{
		{Text: "echo ", Kind: Plain},
		{Text: `"`, Kind: Inserted},
		{Text: "$foo", Kind: Plain},
		{Text: `"`, Kind: Inserted},
	}
	if !slices.Equal(got, want) {
		t.Errorf("RenderFix() = %+v, want %+v", got, want)
	}

	p := Render(script, d)
	if p.Note.Error != "$foo" || !slices.Equal(p.Fix, want) {
		t.Errorf("Render() = %+v", p)
	}
}

func TestRenderFixWithoutReplacements(t *testing.T) {
	for _, fix := range [][]model.Replacement{nil, {}} {
		d := model.Diagnostic{Span: span(3, 6, 3, 10), Fix: fix}
		if got := RenderFix(script, d); got != nil {
			t.Errorf("RenderFix() = %+v, want nil", got)
		}
	}
}

func TestRenderFixClipsToSpannedLines(t *testing.T) {
	d := model.Diagnostic{
		Span: span(1, 1, 1, 3),
		Fix: []model.Replacement{
			{Span: span(1, 1, 1, 3), Text: "a\nb"},
			{Span: span(2, 1, 2, 1), Text: "#"},
		},
	}

	got := RenderFix("ls\nfoo\n", d)
	want := []Segment{{Text: "a\n", Kind: Inserted}}
	if !slices.Equal(got, want) {
		t.Errorf("RenderFix() = %+v, want %+v", got, want)
	}
}
