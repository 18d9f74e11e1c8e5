package components

import (
	"strings"

	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is the right-hand side of the status bar.
type Status struct {
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	Message     string // last action result, shown in place of the hints
	IsError     bool
}

// RenderStatusBar renders the bottom status bar across width.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active
	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if st.Message != "" {
		fg := t.Posted
		if st.IsError {
			fg = t.Negative
		}
		left = lipgloss.NewStyle().Foreground(fg).Background(t.Surface).Render(" " + st.Message)
	}

	var right []string
	switch {
	case st.Refreshing:
		right = append(right, "refreshing...")
	case st.DataAge != "":
		right = append(right, "loaded "+st.DataAge)
	}
	if st.AutoRefresh {
		right = append(right, "auto")
	}
	r := base.Render(strings.Join(right, "  ") + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(r), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + r
}
