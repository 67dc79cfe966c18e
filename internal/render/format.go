package render

import (
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/shgutter/model"
)

// Highlight marks bytes [Start, End) of line Line (0-based) with Group.
type Highlight struct {
	Line  int
	Start int
	End   int
	Group Group
}

// Lines flattens composed lines into text lines and the highlights covering them.
func Lines(lines []Line) ([]string, []Highlight) {
	texts := make([]string, 0, len(lines))
	var hls []Highlight
	for i, l := range lines {
		col := 0
		for _, p := range l {
			if p.Group != GroupNone {
				hls = append(hls, Highlight{Line: i, Start: col, End: col + len(p.Text), Group: p.Group})
			}
			col += len(p.Text)
		}
		texts = append(texts, l.String())
	}
	return texts, hls
}

var markupTags = map[Group][2]string{
	GroupSeparator: {`<span foreground="#008899">`, `</span>`},
	GroupCode:      {`<b>`, `</b>`},
	GroupPreview:   {`<span foreground="#999" background="#222">`, `</span>`},
	GroupError:     {`<span background="#222"><u><span foreground="#F00">`, `</span></u></span>`},
	GroupInserted:  {`<span foreground="#0F0" background="#222">`, `</span>`},
	GroupHint:      {`<span foreground="#0F0">`, `</span>`},
}

// Markup formats the tooltip as Pango markup in a monospace span. All text taken from
// the report or the buffer is escaped.
func Markup(t Tooltip) string {
	var sb strings.Builder
	sb.WriteString(`<span font="monospace">`)
	for i, l := range Compose(t) {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, p := range l {
			text := html.EscapeString(p.Text)
			if tags, ok := markupTags[p.Group]; ok {
				sb.WriteString(tags[0] + text + tags[1])
				continue
			}
			if sev, ok := severityOf(p.Group); ok {
				sb.WriteString(`<b><span foreground="` + sev.Color() + `">` + text + `</span></b>`)
				continue
			}
			sb.WriteString(text)
		}
	}
	sb.WriteString(`</span>`)
	return sb.String()
}

func severityOf(g Group) (model.Severity, bool) {
	for sev := model.SeverityUnknown; sev <= model.SeverityError; sev++ {
		if SeverityGroup(sev) == g {
			return sev, true
		}
	}
	return model.SeverityUnknown, false
}

// Styles maps groups to terminal styles.
type Styles map[Group]lipgloss.Style

// DefaultStyles mirrors the markup colors for terminals.
func DefaultStyles() Styles {
	styles := Styles{
		GroupSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("#008899")),
		GroupCode:      lipgloss.NewStyle().Bold(true),
		GroupPreview:   lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Background(lipgloss.Color("#222222")),
		GroupError:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Background(lipgloss.Color("#222222")).Underline(true),
		GroupInserted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Background(lipgloss.Color("#222222")),
		GroupHint:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
	}
	for sev := model.SeverityUnknown; sev <= model.SeverityError; sev++ {
		styles[SeverityGroup(sev)] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(sev.Color()))
	}
	return styles
}

// Text formats the tooltip for a terminal. With nil styles the output is plain text.
func Text(t Tooltip, styles Styles) string {
	lines := Compose(t)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		var sb strings.Builder
		for _, p := range l {
			if style, ok := styles[p.Group]; ok {
				sb.WriteString(style.Render(p.Text))
				continue
			}
			sb.WriteString(p.Text)
		}
		out = append(out, sb.String())
	}
	return strings.Join(out, "\n")
}
