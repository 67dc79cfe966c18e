package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/shgutter/internal/fs"
	"github.com/sokinpui/shgutter/model"
)

// Input is one script to check.
type Input struct {
	// Name is shown in reports.
	Name string
	// Path is the file the script was read from, "" for stdin and the clipboard.
	Path string
	Text string
}

// SourceProvider determines and retrieves the scripts to check.
type SourceProvider struct {
	resolver  *fs.PathResolver
	clipboard bool
	stdin     io.Reader
	piped     func() bool
	readClip  func() (string, error)
}

// New creates a new SourceProvider resolving file arguments with resolver. With
// useClipboard set, the clipboard is read even when stdin is piped.
func New(resolver *fs.PathResolver, useClipboard bool) *SourceProvider {
	return &SourceProvider{
		resolver:  resolver,
		clipboard: useClipboard,
		stdin:     os.Stdin,
		piped:     stdinIsPiped,
		readClip:  clipboard.ReadAll,
	}
}

func stdinIsPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// GetInputs reads the files named by args, where "-" is stdin. Without args it reads
// stdin if piped and the clipboard otherwise.
func (sp *SourceProvider) GetInputs(args []string) ([]Input, error) {
	if len(args) == 0 {
		if sp.clipboard || !sp.piped() {
			return sp.fromClipboard()
		}
		args = []string{model.StdinFile}
	}

	inputs := make([]Input, 0, len(args))
	for _, arg := range args {
		if arg == model.StdinFile {
			content, err := io.ReadAll(sp.stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read from stdin: %w", err)
			}
			inputs = append(inputs, Input{Name: "<stdin>", Text: string(content)})
			continue
		}
		path, err := sp.resolver.Resolve(arg)
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		inputs = append(inputs, Input{Name: arg, Path: path, Text: string(content)})
	}
	return inputs, nil
}

func (sp *SourceProvider) fromClipboard() ([]Input, error) {
	content, err := sp.readClip()
	if err != nil {
		return nil, fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	return []Input{{Name: "<clipboard>", Text: content}}, nil
}
