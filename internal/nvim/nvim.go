package nvim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/shgutter/internal/engine"
	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/internal/shellcheck"
	"github.com/sokinpui/shgutter/model"
)

const namespace = "shgutter"

// signText is drawn in the sign column of every line with a diagnostic.
const signText = "▌"

// ErrNoAddress is returned when neither a socket address nor stdio was selected.
var ErrNoAddress = errors.New("no Neovim address: set NVIM_LISTEN_ADDRESS or use --stdio")

// Manager connects the engine to a running Neovim instance: the current buffer is
// checked, diagnostics are drawn as signs and :ShGutterHover opens a tooltip float.
type Manager struct {
	nvim   *nvim.Nvim
	ns     int
	served chan error

	mu      sync.Mutex
	current nvim.Buffer
	painted nvim.Buffer
}

// New connects to Neovim. With stdio set the process is expected to be an RPC job
// of Neovim; otherwise addr, or NVIM_LISTEN_ADDRESS when addr is empty, is dialed.
func New(addr string, stdio bool) (*Manager, error) {
	m := &Manager{served: make(chan error, 1)}
	if stdio {
		v, err := nvim.New(os.Stdin, os.Stdout, os.Stdout, func(string, ...interface{}) {})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to nvim over stdio: %w", err)
		}
		m.nvim = v
		go func() { m.served <- v.Serve() }()
	} else {
		if addr == "" {
			addr = os.Getenv("NVIM_LISTEN_ADDRESS")
		}
		if addr == "" {
			return nil, ErrNoAddress
		}
		v, err := nvim.Dial(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
		}
		m.nvim = v
	}

	ns, err := m.nvim.CreateNamespace(namespace)
	if err != nil {
		m.nvim.Close()
		return nil, fmt.Errorf("failed to create namespace: %w", err)
	}
	m.ns = ns
	return m, nil
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

// Run checks Neovim's current buffer and follows buffer switches until ctx is done
// or the connection is closed.
func (m *Manager) Run(ctx context.Context, opts engine.Options) error {
	warnf := opts.Warnf
	opts.Warnf = func(format string, args ...any) {
		if warnf != nil {
			warnf(format, args...)
		}
		m.notify(fmt.Sprintf(format, args...))
	}
	opts.OnPublish = m.paint
	eng := engine.New(opts)

	if err := m.setup(eng); err != nil {
		return err
	}
	if buf, err := m.nvim.CurrentBuffer(); err == nil {
		m.enter(eng, int(buf))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-m.served:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := eng.Run(ctx)
	m.clear()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setup defines highlight groups, registers the notification handlers and installs
// the autocommands sending them.
func (m *Manager) setup(eng *engine.Engine) error {
	handlers := map[string]interface{}{
		"shgutter_enter": func(buf int) { m.enter(eng, buf) },
		"shgutter_changed": func(buf int) {
			if m.isCurrent(buf) {
				eng.Changed()
			}
		},
		"shgutter_refresh": func(buf int) {
			if m.isCurrent(buf) {
				eng.Refresh()
			}
		},
		"shgutter_hover": func(buf, line int) {
			if m.isCurrent(buf) {
				m.hover(eng, line)
			}
		},
	}
	for method, fn := range handlers {
		if err := m.nvim.RegisterHandler(method, fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", method, err)
		}
	}

	groups := highlightGroups()
	if err := m.nvim.ExecLua(setupLua, nil, m.nvim.ChannelID(), groups); err != nil {
		return fmt.Errorf("failed to install autocommands: %w", err)
	}
	return nil
}

func (m *Manager) enter(eng *engine.Engine, buf int) {
	m.mu.Lock()
	m.current = nvim.Buffer(buf)
	m.mu.Unlock()
	eng.Attach(&buffer{v: m.nvim, b: nvim.Buffer(buf)})
}

func (m *Manager) isCurrent(buf int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current == nvim.Buffer(buf)
}

// paint redraws the signs of the current buffer from snap. Signs of a previously
// painted buffer are removed first.
func (m *Manager) paint(snap *shellcheck.Snapshot) {
	m.mu.Lock()
	target, previous := m.current, m.painted
	m.painted = target
	m.mu.Unlock()

	b := m.nvim.NewBatch()
	if previous != 0 && previous != target {
		b.ClearBufferNamespace(previous, m.ns, 0, -1)
	}
	b.ClearBufferNamespace(target, m.ns, 0, -1)
	var id int
	for _, line := range snap.Lines() {
		sev, _ := snap.WorstOnLine(line)
		b.SetBufferExtmark(target, m.ns, line-1, 0, map[string]interface{}{
			"sign_text":     signText,
			"sign_hl_group": string(render.SeverityGroup(sev)),
			"strict":        false,
		}, &id)
	}
	if err := b.Execute(); err != nil {
		m.notify(fmt.Sprintf("failed to draw diagnostics: %v", err))
	}
}

func (m *Manager) clear() {
	m.mu.Lock()
	painted := m.painted
	m.mu.Unlock()
	if painted != 0 {
		m.nvim.ClearBufferNamespace(painted, m.ns, 0, -1)
	}
}

// hover opens a float with the tooltip of line.
func (m *Manager) hover(eng *engine.Engine, line int) {
	tip, ok := eng.TooltipForLine(line)
	if !ok {
		return
	}
	texts, hls := render.Lines(render.Compose(tip))
	marks := make([][]interface{}, 0, len(hls))
	for _, h := range hls {
		marks = append(marks, []interface{}{h.Line, h.Start, h.End, string(h.Group)})
	}
	if err := m.nvim.ExecLua(hoverLua, nil, texts, marks); err != nil {
		m.notify(fmt.Sprintf("failed to open tooltip: %v", err))
	}
}

func (m *Manager) notify(msg string) {
	m.nvim.ExecLua(`vim.notify(..., vim.log.levels.WARN, { title = "shgutter" })`, nil, msg)
}

// highlightGroups maps group names to nvim_set_hl attributes.
func highlightGroups() map[string]map[string]interface{} {
	groups := map[string]map[string]interface{}{
		string(render.GroupSeparator): {"fg": "#008899"},
		string(render.GroupCode):      {"bold": true},
		string(render.GroupPreview):   {"fg": "#999999", "bg": "#222222"},
		string(render.GroupError):     {"fg": "#ff0000", "bg": "#222222", "underline": true},
		string(render.GroupInserted):  {"fg": "#00ff00", "bg": "#222222"},
		string(render.GroupHint):      {"fg": "#00ff00"},
	}
	for sev := model.SeverityUnknown; sev <= model.SeverityError; sev++ {
		groups[string(render.SeverityGroup(sev))] = map[string]interface{}{"fg": sev.Color(), "bold": true}
	}
	return groups
}

const setupLua = `
local chan, groups = ...
for name, attrs in pairs(groups) do
  attrs.default = true
  vim.api.nvim_set_hl(0, name, attrs)
end
local group = vim.api.nvim_create_augroup("shgutter", { clear = true })
local function send(event)
  return function(args) vim.rpcnotify(chan, event, args.buf) end
end
vim.api.nvim_create_autocmd("BufEnter", { group = group, callback = send("shgutter_enter") })
vim.api.nvim_create_autocmd({ "TextChanged", "TextChangedI" }, { group = group, callback = send("shgutter_changed") })
vim.api.nvim_create_autocmd({ "BufWritePost", "BufReadPost", "FileType" }, { group = group, callback = send("shgutter_refresh") })
vim.api.nvim_create_user_command("ShGutterHover", function()
  vim.rpcnotify(chan, "shgutter_hover", vim.api.nvim_get_current_buf(), vim.api.nvim_win_get_cursor(0)[1])
end, { force = true })
`

const hoverLua = `
local lines, marks = ...
local buf = vim.lsp.util.open_floating_preview(lines, "", { border = "rounded", focus_id = "shgutter" })
local ns = vim.api.nvim_create_namespace("shgutter_hover")
for _, m in ipairs(marks) do
  vim.api.nvim_buf_add_highlight(buf, ns, m[4], m[1], m[2], m[3])
end
`
