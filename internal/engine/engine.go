// Package engine keeps the diagnostics of one editor buffer current. It runs the
// scheduler's decisions on a single goroutine: timers, shellcheck processes and the
// watchers reading their output all report back through one event channel.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/sokinpui/shgutter/internal/fs"
	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/internal/scheduler"
	"github.com/sokinpui/shgutter/internal/shellcheck"
	"github.com/sokinpui/shgutter/model"
)

// Buffer is the editor buffer being checked. Its methods are only called from the
// engine goroutine.
type Buffer interface {
	// Text returns the full content of the buffer.
	Text() string
	LineCount() int
	// Language returns the editor's language identifier of the buffer.
	Language() string
	// Path returns the file backing the buffer, or "" for unnamed buffers.
	Path() string
}

// Provider answers the rendering queries of gutters and tooltips.
type Provider interface {
	// PaintHintForLine returns the worst severity reported on line, if any.
	PaintHintForLine(line int) (model.Severity, bool)
	// TooltipForLine returns one block per diagnostic covering line.
	TooltipForLine(line int) (render.Tooltip, bool)
}

// DefaultExitWait bounds each wait for shellcheck to exit after closing its output.
const DefaultExitWait = 500 * time.Millisecond

// Options configure an Engine.
type Options struct {
	Launcher shellcheck.Launcher
	Policy   scheduler.Policy
	// ExitWait bounds one wait for a process to exit once its output closed. Waits
	// are retried until the process exits.
	ExitWait time.Duration
	// OnPublish is called on the engine goroutine whenever the snapshot is replaced.
	OnPublish func(*shellcheck.Snapshot)
	// OnState is called on the engine goroutine when the scheduler changes state.
	OnState func(scheduler.State)
	Warnf   func(format string, args ...any)
	// Tracef may be called from any goroutine.
	Tracef func(format string, args ...any)
}

// Engine schedules shellcheck runs for the attached buffer and publishes their results.
type Engine struct {
	opts   Options
	events chan any
	done   chan struct{}
	snap   atomic.Pointer[shellcheck.Snapshot]

	// owned by the engine goroutine
	machine scheduler.Machine
	buf     Buffer
	timer   *time.Timer
	watch   *watch
}

// watch is the in-flight check being listened to.
type watch struct {
	gen  uint64
	text string
	stop chan struct{}
}

type (
	attachMsg  struct{ buf Buffer }
	detachMsg  struct{}
	changedMsg struct{}
	refreshMsg struct{}
)

var _ Provider = (*Engine)(nil)

// New returns an engine with an empty snapshot. Nothing happens until Run is called.
func New(opts Options) *Engine {
	if opts.Launcher == nil {
		opts.Launcher = &shellcheck.Runner{}
	}
	if opts.ExitWait <= 0 {
		opts.ExitWait = DefaultExitWait
	}
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}
	if opts.Tracef == nil {
		opts.Tracef = func(string, ...any) {}
	}
	e := &Engine{
		opts:    opts,
		events:  make(chan any, 64),
		done:    make(chan struct{}),
		machine: scheduler.New(opts.Policy),
	}
	e.snap.Store(shellcheck.Empty())
	return e
}

// Attach connects buf, replacing any attached buffer. When buf is a shell script with a
// project folder it is checked at once.
func (e *Engine) Attach(buf Buffer) { e.post(attachMsg{buf: buf}) }

// Detach disconnects the buffer and clears the published diagnostics.
func (e *Engine) Detach() { e.post(detachMsg{}) }

// Changed notifies an edit of the attached buffer.
func (e *Engine) Changed() { e.post(changedMsg{}) }

// Refresh re-evaluates the attached buffer after it was saved, loaded or changed language.
func (e *Engine) Refresh() { e.post(refreshMsg{}) }

// Snapshot returns the diagnostics of the last successful check.
func (e *Engine) Snapshot() *shellcheck.Snapshot { return e.snap.Load() }

// PaintHintForLine implements Provider.
func (e *Engine) PaintHintForLine(line int) (model.Severity, bool) {
	return e.Snapshot().WorstOnLine(line)
}

// TooltipForLine implements Provider.
func (e *Engine) TooltipForLine(line int) (render.Tooltip, bool) {
	snap := e.Snapshot()
	diags := snap.CoveringLine(line)
	if len(diags) == 0 {
		return render.Tooltip{}, false
	}
	return render.NewTooltip(snap.Text(), line, diags), true
}

// Run processes notifications until ctx is done. It must be called once. Processes still
// running at that point are left to finish on their own.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	defer e.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-e.events:
			e.handle(msg)
		}
	}
}

// post queues msg for the engine goroutine. It gives up once Run has returned.
func (e *Engine) post(msg any) {
	select {
	case e.events <- msg:
	case <-e.done:
	}
}

func (e *Engine) handle(msg any) {
	switch msg := msg.(type) {
	case attachMsg:
		e.buf = msg.buf
		dir, ok := e.attachable()
		if !ok {
			e.step(scheduler.Detach{})
			return
		}
		e.step(scheduler.Attach{Dir: dir})
	case detachMsg:
		e.buf = nil
		e.step(scheduler.Detach{})
	case changedMsg:
		if e.buf == nil {
			return
		}
		e.step(scheduler.Changed{LineCount: e.buf.LineCount()})
	case refreshMsg:
		dir, ok := e.attachable()
		ev := scheduler.Refresh{Attachable: ok, Dir: dir}
		if ok {
			ev.LineCount = e.buf.LineCount()
		}
		e.step(ev)
	case scheduler.Event:
		e.step(msg)
	}
}

// attachable reports whether the current buffer should be checked, and where.
func (e *Engine) attachable() (string, bool) {
	if e.buf == nil {
		return "", false
	}
	if lang := e.buf.Language(); !shellcheck.IsShellLanguage(lang) {
		e.opts.Tracef("engine: not checking %q buffer", lang)
		return "", false
	}
	dir, err := fs.ResolveProjectFolder(e.buf.Path())
	if err != nil {
		e.opts.Tracef("engine: %v", err)
		return "", false
	}
	return dir, true
}

func (e *Engine) step(ev scheduler.Event) {
	before := e.machine.State()
	effects := e.machine.Step(ev)
	if after := e.machine.State(); after != before {
		e.opts.Tracef("engine: %v -> %v on %T", before, after, ev)
		if e.opts.OnState != nil {
			e.opts.OnState(after)
		}
	}
	for _, eff := range effects {
		e.apply(eff)
	}
}

func (e *Engine) apply(eff scheduler.Effect) {
	switch eff := eff.(type) {
	case scheduler.StartTimer:
		e.stopTimer()
		gen := eff.Gen
		e.timer = time.AfterFunc(eff.Delay, func() {
			e.post(scheduler.TimerFired{Gen: gen})
		})
	case scheduler.CancelTimer:
		e.stopTimer()
	case scheduler.SpawnCheck:
		e.spawn(eff.Gen, eff.Dir)
	case scheduler.StopWatch:
		if e.watch != nil && e.watch.gen == eff.Gen {
			close(e.watch.stop)
			e.watch = nil
		}
	case scheduler.Correlate:
		e.correlate(eff.Gen, eff.Output)
	case scheduler.Warn:
		e.opts.Warnf("%v", eff.Err)
	case scheduler.ClearRendering:
		e.publish(shellcheck.Empty())
	}
}

func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) spawn(gen uint64, dir string) {
	if e.buf == nil {
		e.step(scheduler.StartFailed{Gen: gen, Err: errors.New("no buffer attached")})
		return
	}
	text := e.buf.Text()
	proc, err := e.opts.Launcher.Launch(dir, text)
	if err != nil {
		e.step(scheduler.StartFailed{Gen: gen, Err: err})
		return
	}
	e.opts.Tracef("engine: check %d started in %s", gen, dir)

	w := &watch{gen: gen, text: text, stop: make(chan struct{})}
	e.watch = w
	go e.follow(w, proc)
}

// follow drains the output of proc, then waits for it to exit in bounded steps and
// reports the result unless the watch was stopped meanwhile. The output is drained
// even after a stop so the process never blocks on a full pipe.
func (e *Engine) follow(w *watch, proc shellcheck.Process) {
	output, readErr := io.ReadAll(proc.Stdout())
	if readErr != nil {
		readErr = fmt.Errorf("failed to read shellcheck output: %w", readErr)
	}

	exited := make(chan error, 1)
	go func() { exited <- proc.Wait() }()

	for waited := false; !waited; {
		select {
		case err := <-exited:
			var exitErr *exec.ExitError
			if err != nil && !errors.As(err, &exitErr) && readErr == nil {
				readErr = fmt.Errorf("shellcheck did not finish: %w", err)
			}
			waited = true
		case <-time.After(e.opts.ExitWait):
			e.opts.Tracef("engine: check %d closed its output but is still running", w.gen)
		case <-w.stop:
			return
		}
	}

	select {
	case <-w.stop:
		return
	default:
	}
	e.post(scheduler.Finished{Gen: w.gen, Output: output, Err: readErr})
}

func (e *Engine) correlate(gen uint64, output []byte) {
	w := e.watch
	if w == nil || w.gen != gen {
		return
	}
	e.watch = nil

	snap, err := shellcheck.Parse(output, w.text)
	if err != nil {
		e.opts.Tracef("engine: keeping previous diagnostics: %v", err)
		return
	}
	e.publish(snap)
}

func (e *Engine) publish(snap *shellcheck.Snapshot) {
	e.snap.Store(snap)
	if e.opts.OnPublish != nil {
		e.opts.OnPublish(snap)
	}
}

func (e *Engine) shutdown() {
	e.stopTimer()
	if e.watch != nil {
		close(e.watch.stop)
		e.watch = nil
	}
}
