package preview

import (
	"strings"
	"unicode/utf8"
)

// document resolves 1-indexed line/column positions to byte offsets of a text.
type document struct {
	text   string
	starts []int
}

func newDocument(text string) document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return document{text: text, starts: starts}
}

// lineStart returns the offset of the first byte of line. Lines past the end resolve
// to the end of the text.
func (d document) lineStart(line int) int {
	switch {
	case line < 1:
		return 0
	case line > len(d.starts):
		return len(d.text)
	}
	return d.starts[line-1]
}

// contentEnd returns the offset just before the newline terminating line.
func (d document) contentEnd(line int) int {
	start := d.lineStart(line)
	if i := strings.IndexByte(d.text[start:], '\n'); i >= 0 {
		return start + i
	}
	return len(d.text)
}

// offset returns the byte offset of column col on line. Columns count characters from
// 1 and are clamped to the line's content.
func (d document) offset(line, col int) int {
	pos := d.lineStart(line)
	end := d.contentEnd(line)
	for n := 1; n < col && pos < end; n++ {
		_, size := utf8.DecodeRuneInString(d.text[pos:end])
		pos += size
	}
	return pos
}
