package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is a fenced code block of a Markdown document.
type CodeBlock struct {
	// Hint is the raw source of the paragraph right before the fence, if any.
	Hint string
	// Lang is the info string language, e.g. "sh" or "bash".
	Lang    string
	Content string
	// Line is the 1-based source line of the first content line.
	Line int
}

// ExtractCodeBlocks returns the fenced code blocks of source in document order.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks []CodeBlock
	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		fence, ok := node.(*ast.FencedCodeBlock)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		blocks = append(blocks, CodeBlock{
			Hint:    hintOf(fence, source),
			Lang:    string(fence.Language(source)),
			Content: joinSegments(fence.Lines(), source),
			Line:    firstLine(fence.Lines(), source),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// hintOf reads the preceding paragraph from source, keeping inline markup such as
// backticks that the paragraph's text would drop.
func hintOf(fence *ast.FencedCodeBlock, source []byte) string {
	p, ok := fence.PreviousSibling().(*ast.Paragraph)
	if !ok {
		return ""
	}
	return strings.TrimSpace(joinSegments(p.Lines(), source))
}

func joinSegments(segs *text.Segments, source []byte) string {
	var b bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

// firstLine is 0 for a block without content.
func firstLine(segs *text.Segments, source []byte) int {
	if segs.Len() == 0 {
		return 0
	}
	return bytes.Count(source[:segs.At(0).Start], []byte("\n")) + 1
}
