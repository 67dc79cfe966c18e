package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/sokinpui/shgutter/internal/engine"
	"github.com/sokinpui/shgutter/internal/render"
	"github.com/sokinpui/shgutter/internal/scheduler"
	"github.com/sokinpui/shgutter/internal/shellcheck"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

const signText = "▌"

// --- Messages ---
type snapshotMsg struct{ snap *shellcheck.Snapshot }

type stateMsg struct{ state scheduler.State }

type reloadMsg struct{}

type warnMsg struct{ text string }

// --- Model ---
type Model struct {
	buf      *fileBuffer
	engine   engine.Provider
	styles   render.Styles
	spinner  spinner.Model
	snapshot *shellcheck.Snapshot
	lines    []string
	state    scheduler.State
	warning  string
	cursor   int
	offset   int
	width    int
	height   int
}

// New returns the watch view of buf. provider answers gutter and tooltip queries.
func New(buf *fileBuffer, provider engine.Provider, styles render.Styles) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		buf:      buf,
		engine:   provider,
		styles:   styles,
		spinner:  s,
		snapshot: shellcheck.Empty(),
		lines:    splitLines(buf.Text()),
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			m.move(1)
		case "k", "up":
			m.move(-1)
		case "g", "home":
			m.move(-len(m.lines))
		case "G", "end":
			m.move(len(m.lines))
		case "n":
			m.nextDiagnostic()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.move(0)

	case reloadMsg:
		m.lines = splitLines(m.buf.Text())
		m.move(0)

	case snapshotMsg:
		m.snapshot = msg.snap
		m.warning = ""

	case stateMsg:
		m.state = msg.state

	case warnMsg:
		m.warning = msg.text

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// move shifts the cursor by delta lines and scrolls to keep it visible.
func (m *Model) move(delta int) {
	m.cursor = min(max(m.cursor+delta, 0), len(m.lines)-1)
	rows := m.codeRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// nextDiagnostic moves the cursor to the next line with a diagnostic, wrapping around.
func (m *Model) nextDiagnostic() {
	lines := m.snapshot.Lines()
	if len(lines) == 0 {
		return
	}
	target := lines[0]
	for _, l := range lines {
		if l-1 > m.cursor {
			target = l
			break
		}
	}
	m.move(target - 1 - m.cursor)
}

// codeRows is the number of rows left for the script after the header and tooltip.
func (m Model) codeRows() int {
	return max(m.height-2-len(m.tooltipLines()), 1)
}

func (m Model) tooltipLines() []string {
	tip, ok := m.engine.TooltipForLine(m.cursor + 1)
	if !ok {
		return nil
	}
	return strings.Split(render.Text(tip, m.styles), "\n")
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	numWidth := runewidth.StringWidth(strconv.Itoa(len(m.lines)))
	textWidth := max(m.width-numWidth-3, 1)
	rows := m.codeRows()
	for i := m.offset; i < len(m.lines) && i < m.offset+rows; i++ {
		b.WriteString(m.sign(i + 1))
		b.WriteString(faintStyle.Render(fmt.Sprintf("%*d ", numWidth, i+1)))
		text := runewidth.Truncate(strings.ReplaceAll(m.lines[i], "\t", "    "), textWidth, "…")
		if i == m.cursor {
			text = cursorStyle.Render(runewidth.FillRight(text, textWidth))
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	if tip := m.tooltipLines(); len(tip) > 0 {
		b.WriteString(strings.Join(tip, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) header() string {
	status := successStyle.Render(fmt.Sprintf("%d line(s) flagged", len(m.snapshot.Lines())))
	if m.state != scheduler.Idle {
		status = fmt.Sprintf("%s %s", m.spinner.View(), m.state)
	}
	if m.warning != "" {
		status = errorStyle.Render(m.warning)
	}
	return headerStyle.Render(m.buf.Path()) + "  " + status + faintStyle.Render("  (j/k move, n next, q quit)")
}

// sign paints the gutter cell of line with the worst severity reported on it.
func (m Model) sign(line int) string {
	sev, ok := m.engine.PaintHintForLine(line)
	if !ok {
		return " "
	}
	if style, ok := m.styles[render.SeverityGroup(sev)]; ok {
		return style.Render(signText)
	}
	return sev.Code()[:1]
}
