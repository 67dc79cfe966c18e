package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/internal/shellcheck"
	"github.com/sokinpui/shgutter/model"
)

func writeScript(t *testing.T, name, content string) *fileBuffer {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	buf := newFileBuffer(path)
	if err := buf.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	return buf
}

func TestFileBufferLanguage(t *testing.T) {
	tests := []struct {
		name, content, want string
	}{
		{"run.sh", "echo hi\n", "sh"},
		{"run.bash", "echo hi\n", "bash"},
		{"run", "#!/bin/bash\necho hi\n", "bash"},
		{"run", "#!/usr/bin/env dash\n", "dash"},
		{"run.py", "print('hi')\n", ""},
		{"run", "", ""},
	}
	for _, tt := range tests {
		buf := writeScript(t, tt.name, tt.content)
		if got := buf.Language(); got != tt.want {
			t.Errorf("Language() of %s %q = %q, want %q", tt.name, tt.content, got, tt.want)
		}
	}
}

func TestFileBufferReload(t *testing.T) {
	buf := writeScript(t, "x.sh", "a\nb\n")
	if buf.LineCount() != 2 {
		t.Errorf("LineCount() = %d, want 2", buf.LineCount())
	}
	if err := os.Remove(buf.Path()); err != nil {
		t.Fatal(err)
	}
	if err := buf.reload(); err != nil {
		t.Fatalf("reload() of removed file error = %v", err)
	}
	if buf.Text() != "" || buf.LineCount() != 1 {
		t.Errorf("removed file reads as %q", buf.Text())
	}
}

type snapshotProvider struct{ snap *shellcheck.Snapshot }

func (p snapshotProvider) PaintHintForLine(line int) (model.Severity, bool) {
	return p.snap.WorstOnLine(line)
}

func (p snapshotProvider) TooltipForLine(line int) (render.Tooltip, bool) {
	diags := p.snap.CoveringLine(line)
	if len(diags) == 0 {
		return render.Tooltip{}, false
	}
	return render.NewTooltip(p.snap.Text(), line, diags), true
}

func TestModel(t *testing.T) {
	text := "#!/bin/sh\nfoo=1\necho $foo\n"
	buf := writeScript(t, "x.sh", text)
	snap := shellcheck.NewSnapshot(text, []model.Diagnostic{{
		File:     model.StdinFile,
		Span:     model.Span{Line: 3, Column: 6, EndLine: 3, EndColumn: 10},
		Severity: model.SeverityInfo,
		Code:     2086,
		Message:  "Double quote to prevent globbing and word splitting.",
	}})

	var m tea.Model = New(buf, snapshotProvider{snap: snap}, nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m, _ = m.Update(snapshotMsg{snap: snap})

	view := m.View()
	if !strings.Contains(view, "1 line(s) flagged") {
		t.Errorf("header missing count:\n%s", view)
	}
	if strings.Contains(view, "SC2086") {
		t.Errorf("tooltip shown on a clean line:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if got := m.(Model).cursor; got != 2 {
		t.Fatalf("cursor after n = %d, want 2", got)
	}
	view = m.View()
	if !strings.Contains(view, "3:6: SC2086 (info)") {
		t.Errorf("tooltip missing:\n%s", view)
	}
	if !strings.Contains(view, "i3 echo $foo") {
		t.Errorf("gutter hint missing:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if got := m.(Model).cursor; got != 2 {
		t.Errorf("cursor moved past the last line: %d", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if got := m.(Model).cursor; got != 0 {
		t.Errorf("cursor after g = %d, want 0", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
}
