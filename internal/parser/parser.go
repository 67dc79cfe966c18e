package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sokinpui/shgutter/internal/shellcheck"
)

// pathInHintRegex finds a backticked file name in the paragraph before a block.
var pathInHintRegex = regexp.MustCompile("`([^`\n]+)`")

// ShellBlock is a shell script embedded in Markdown.
type ShellBlock struct {
	// Name is the file named in the block's hint, or "block N".
	Name string
	// Line is the line of the Markdown source the script starts on.
	Line    int
	Content string
}

// ShellBlocks returns the fenced code blocks of source tagged with a shell language,
// in document order.
func ShellBlocks(source []byte) ([]ShellBlock, error) {
	blocks, err := ExtractCodeBlocks(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}

	var shell []ShellBlock
	for _, b := range blocks {
		if !shellcheck.IsShellLanguage(b.Lang) {
			continue
		}
		name := fmt.Sprintf("block %d", len(shell)+1)
		if m := pathInHintRegex.FindStringSubmatch(b.Hint); m != nil {
			name = strings.TrimSpace(m[1])
		}
		shell = append(shell, ShellBlock{Name: name, Line: b.Line, Content: b.Content})
	}
	return shell, nil
}
