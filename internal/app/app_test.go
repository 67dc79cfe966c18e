package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sokinpui/shgutter/cli"
	"github.com/sokinpui/shgutter/internal/shellcheck"
	"github.com/sokinpui/shgutter/internal/source"
)

const quoteReport = `{"comments":[{"file":"-","line":2,"endLine":2,"column":6,"endColumn":8,"level":"info","code":2086,"message":"Double quote to prevent globbing and word splitting.","fix":{"replacements":[{"line":2,"endLine":2,"column":6,"endColumn":6,"replacement":"\""},{"line":2,"endLine":2,"column":8,"endColumn":8,"replacement":"\""}]}}]}`

type fakeProcess struct{ out io.Reader }

func (p fakeProcess) Stdout() io.Reader { return p.out }
func (p fakeProcess) Wait() error       { return nil }

// fakeLauncher reports SC2086 for scripts containing "$1" and nothing otherwise.
type fakeLauncher struct {
	mu   sync.Mutex
	dirs []string
}

func (l *fakeLauncher) Launch(dir, input string) (shellcheck.Process, error) {
	l.mu.Lock()
	l.dirs = append(l.dirs, dir)
	l.mu.Unlock()
	switch {
	case strings.Contains(input, "fail"):
		return nil, shellcheck.ErrToolNotFound
	case strings.Contains(input, "$1"):
		return fakeProcess{out: strings.NewReader(quoteReport)}, nil
	}
	return fakeProcess{out: strings.NewReader(`{"comments":[]}`)}, nil
}

func newTestApp(t *testing.T, markdown bool) *App {
	t.Helper()
	cfg := cli.Defaults()
	cfg.Markdown = markdown
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.launcher = &fakeLauncher{}
	return a
}

func TestCheckAll(t *testing.T) {
	a := newTestApp(t, false)
	var progress []int
	a.SetProgressCallback(func(current, total int) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		progress = append(progress, current)
	})

	results := a.CheckAll(context.Background(), []Unit{
		{Name: "clean.sh", Text: "#!/bin/sh\necho ok\n"},
		{Name: "quote.sh", Text: "#!/bin/sh\necho $1\n"},
		{Name: "broken.sh", Text: "fail\n"},
	})
	if len(progress) != 4 || progress[3] != 3 {
		t.Errorf("progress = %v", progress)
	}

	clean, flagged, failed := Summary{Results: results}.Partition()
	if len(clean) != 1 || clean[0] != "clean.sh" {
		t.Errorf("clean = %v", clean)
	}
	if len(flagged) != 1 || flagged[0] != "quote.sh" {
		t.Errorf("flagged = %v", flagged)
	}
	if len(failed) != 1 || failed[0] != "broken.sh" {
		t.Errorf("failed = %v", failed)
	}
	if !errors.Is(results[2].Err, shellcheck.ErrToolNotFound) {
		t.Errorf("broken.sh error = %v", results[2].Err)
	}
}

func TestUnitsFromMarkdown(t *testing.T) {
	a := newTestApp(t, true)
	units, err := a.units(nil)
	if err != nil || len(units) != 0 {
		t.Fatalf("units(nil) = %v, %v", units, err)
	}

	md := "Try `demo.sh`:\n\n```sh\n#!/bin/sh\necho $1\n```\n"
	a.cfg.Markdown = true
	results := a.CheckAll(context.Background(), mustUnits(t, a, md))
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Unit.Name != "README.md: demo.sh" || results[0].Unit.LineOffset != 3 {
		t.Errorf("unit = %+v", results[0].Unit)
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, results, "json", nil); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	var got []jsonDiagnostic
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0].Line != 5 || got[0].Code != 2086 || !got[0].Fixable {
		t.Errorf("json report = %+v", got)
	}
}

func mustUnits(t *testing.T, a *App, md string) []Unit {
	t.Helper()
	units, err := a.units(inputsOf("README.md", md))
	if err != nil {
		t.Fatalf("units() error = %v", err)
	}
	return units
}

func TestWriteReportText(t *testing.T) {
	a := newTestApp(t, false)
	results := a.CheckAll(context.Background(), []Unit{
		{Name: "quote.sh", Text: "#!/bin/sh\necho $1\n"},
		{Name: "broken.sh", Text: "fail\n"},
	})

	var buf bytes.Buffer
	if err := WriteReport(&buf, results, "text", nil); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	want := "quote.sh:2\n" +
		"2:6: SC2086 (info): Double quote to prevent globbing and word splitting.\n" +
		"echo $1\n" +
		"Did you mean:\n" +
		"echo \"$1\"\n\n"
	if got := buf.String(); got != want {
		t.Errorf("text report =\n%s\nwant\n%s", got, want)
	}

	buf.Reset()
	if err := WriteReport(&buf, results, "markup", nil); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), `<span font="monospace">`) {
		t.Errorf("markup report = %s", buf.String())
	}

	if err := WriteReport(&buf, results, "yaml", nil); err == nil {
		t.Error("unknown format accepted")
	}
}

func inputsOf(name, text string) []source.Input {
	return []source.Input{{Name: name, Text: text}}
}
