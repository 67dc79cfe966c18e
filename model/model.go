package model

// StdinFile is the file name shellcheck reports for input read from standard input.
// Only diagnostics carrying it refer to the checked buffer; others point into sourced files.
const StdinFile = "-"

// Span locates a region of text. Lines and columns are 1-indexed and columns count
// characters, a tab counting as one.
type Span struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// ContainsLine reports whether line falls between the span's first and last line.
func (s Span) ContainsLine(line int) bool {
	return line >= s.Line && line <= s.EndLine
}

// Replacement is a single edit of a suggested fix, positioned in the unfixed text.
type Replacement struct {
	Span Span
	Text string
}

// Diagnostic represents a single finding reported by shellcheck.
type Diagnostic struct {
	File     string
	Span     Span
	Severity Severity
	Code     int
	Message  string
	// Fix holds the replacements of the suggested fix in the order the tool gave them.
	// Nil or empty means no preview is available.
	Fix []Replacement
}

// FromStdin reports whether the diagnostic refers to the checked input itself.
func (d Diagnostic) FromStdin() bool {
	return d.File == StdinFile
}

// HasFix reports whether a fix preview can be rendered for the diagnostic.
func (d Diagnostic) HasFix() bool {
	return len(d.Fix) > 0
}
