package shgutter_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sokinpui/shgutter/model"
	"github.com/sokinpui/shgutter/shgutter"
)

const report = `{"comments":[` +
	`{"file":"-","line":2,"endLine":2,"column":6,"endColumn":8,"level":"info","code":2086,"message":"Double quote to prevent globbing and word splitting.","fix":{"replacements":[{"line":2,"endLine":2,"column":6,"endColumn":6,"replacement":"\""},{"line":2,"endLine":2,"column":8,"endColumn":8,"replacement":"\""}]}},` +
	`{"file":"lib.sh","line":1,"endLine":1,"column":1,"endColumn":2,"level":"error","code":1000,"message":"in a sourced file"}` +
	`]}`

// fakeShellcheck writes a script printing report, ignoring its input.
func fakeShellcheck(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "report.json")
	if err := os.WriteFile(out, []byte(report), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "shellcheck")
	script := "#!/bin/sh\ncat > /dev/null\ncat '" + out + "'\nexit 1\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLibraryInterface(t *testing.T) {
	cfg := shgutter.Config{Shellcheck: fakeShellcheck(t)}
	text := "#!/bin/sh\necho $1\n"

	t.Run("Check keeps findings about the script", func(t *testing.T) {
		res, err := shgutter.Check(context.Background(), text, t.TempDir(), cfg)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if len(res.Diags) != 1 || res.Diags[0].Code != 2086 {
			t.Fatalf("Diags = %+v", res.Diags)
		}
		if lines := res.Lines(); len(lines) != 1 || lines[0] != 2 {
			t.Errorf("Lines() = %v", lines)
		}
		if sev, ok := res.Worst(2); !ok || sev != model.SeverityInfo {
			t.Errorf("Worst(2) = %v, %v", sev, ok)
		}
	})

	t.Run("Tooltip previews the fix", func(t *testing.T) {
		res, err := shgutter.Check(context.Background(), text, "", cfg)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		tip := res.Tooltip(2)
		if !strings.Contains(tip, "Did you mean:\necho \"$1\"") {
			t.Errorf("Tooltip(2) = %q", tip)
		}
		if res.Tooltip(1) != "" || res.Markup(1) != "" {
			t.Error("tooltip for a clean line")
		}
		if !strings.HasPrefix(res.Markup(2), `<span font="monospace">`) {
			t.Errorf("Markup(2) = %q", res.Markup(2))
		}
	})

	t.Run("missing shellcheck", func(t *testing.T) {
		_, err := shgutter.Check(context.Background(), text, "", shgutter.Config{Shellcheck: filepath.Join(t.TempDir(), "none")})
		if !errors.Is(err, shgutter.ErrToolNotFound) {
			t.Errorf("Check error = %v, want ErrToolNotFound", err)
		}
	})
}
