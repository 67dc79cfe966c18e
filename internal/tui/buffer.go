package tui

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fileBuffer is a script on disk, re-read whenever it changes.
type fileBuffer struct {
	path string

	mu   sync.RWMutex
	text string
}

func newFileBuffer(path string) *fileBuffer {
	return &fileBuffer{path: path}
}

// reload reads the file again. A missing file reads as empty.
func (b *fileBuffer) reload() error {
	content, err := os.ReadFile(b.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	b.mu.Lock()
	b.text = string(content)
	b.mu.Unlock()
	return nil
}

func (b *fileBuffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

func (b *fileBuffer) LineCount() int {
	return len(splitLines(b.Text()))
}

func (b *fileBuffer) Path() string { return b.path }

// Language guesses the shell dialect from the file extension, then from the shebang.
func (b *fileBuffer) Language() string {
	switch ext := strings.TrimPrefix(filepath.Ext(b.path), "."); ext {
	case "sh", "bash", "dash", "ksh":
		return ext
	}

	first, _, _ := strings.Cut(b.Text(), "\n")
	if !strings.HasPrefix(first, "#!") {
		return ""
	}
	fields := strings.Fields(strings.TrimPrefix(first, "#!"))
	if len(fields) == 0 {
		return ""
	}
	interp := filepath.Base(fields[0])
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	return interp
}

// splitLines splits text into lines without their terminators. A trailing newline does
// not start another line.
func splitLines(text string) []string {
	if text == "" {
		return []string{""}
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
