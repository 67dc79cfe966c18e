package tui

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/sokinpui/shgutter/internal/engine"
	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/internal/scheduler"
	"github.com/sokinpui/shgutter/internal/shellcheck"
)

// Watch shows path with its diagnostics and re-checks it whenever it changes on disk,
// until the user quits or ctx is done.
func Watch(ctx context.Context, path string, opts engine.Options, styles render.Styles) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	buf := newFileBuffer(abs)
	if err := buf.reload(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer watcher.Close()
	// Editors often replace files instead of writing them, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}
	opts.OnPublish = func(s *shellcheck.Snapshot) { send(snapshotMsg{snap: s}) }
	opts.OnState = func(s scheduler.State) { send(stateMsg{state: s}) }
	opts.Warnf = func(format string, args ...any) { send(warnMsg{text: fmt.Sprintf(format, args...)}) }
	eng := engine.New(opts)

	p = tea.NewProgram(New(buf, eng, styles), tea.WithAltScreen(), tea.WithContext(ctx))

	go eng.Run(ctx)
	go follow(ctx, watcher, buf, eng, send)
	eng.Attach(buf)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// follow turns file system events about buf into engine notifications.
func follow(ctx context.Context, watcher *fsnotify.Watcher, buf *fileBuffer, eng *engine.Engine, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			send(warnMsg{text: err.Error()})
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != buf.Path() {
				continue
			}
			if err := buf.reload(); err != nil {
				send(warnMsg{text: err.Error()})
				continue
			}
			send(reloadMsg{})
			if !ev.Has(fsnotify.Write) {
				eng.Refresh()
			}
			eng.Changed()
		}
	}
}
