package nvim

import (
	"os/exec"
	"testing"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/model"
)

func TestHighlightGroups(t *testing.T) {
	groups := highlightGroups()
	for _, g := range []render.Group{
		render.GroupSeparator, render.GroupCode, render.GroupPreview,
		render.GroupError, render.GroupInserted, render.GroupHint,
	} {
		if _, ok := groups[string(g)]; !ok {
			t.Errorf("no highlight for %s", g)
		}
	}
	for sev := model.SeverityUnknown; sev <= model.SeverityError; sev++ {
		attrs, ok := groups[string(render.SeverityGroup(sev))]
		if !ok {
			t.Errorf("no highlight for %v", sev)
			continue
		}
		if attrs["fg"] != sev.Color() {
			t.Errorf("%v fg = %v, want %s", sev, attrs["fg"], sev.Color())
		}
	}
}

func TestBuffer(t *testing.T) {
	if _, err := exec.LookPath("nvim"); err != nil {
		t.Skip("nvim not installed")
	}
	v, err := nvim.NewChildProcess(nvim.ChildProcessArgs("--embed", "--headless", "--clean"))
	if err != nil {
		t.Fatalf("failed to start nvim: %v", err)
	}
	defer v.Close()

	cur, err := v.CurrentBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if err := v.SetBufferLines(cur, 0, -1, true, [][]byte{[]byte("#!/bin/sh"), []byte("echo $1")}); err != nil {
		t.Fatal(err)
	}
	if err := v.Command("setfiletype sh"); err != nil {
		t.Fatal(err)
	}

	b := &buffer{v: v, b: cur}
	if got, want := b.Text(), "#!/bin/sh\necho $1\n"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if got := b.LineCount(); got != 2 {
		t.Errorf("LineCount() = %d, want 2", got)
	}
	if got := b.Language(); got != "sh" {
		t.Errorf("Language() = %q, want sh", got)
	}
	if got := b.Path(); got != "" {
		t.Errorf("Path() = %q, want empty for an unnamed buffer", got)
	}
}
