package components

import (
	"strings"

	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry in the tab bar. Key is its shortcut, which is always
// the first letter of Name.
type Tab struct {
	Name string
	Key  string
}

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Nights", Key: "n"},
	{Name: "Cards", Key: "c"},
	{Name: "Benefits", Key: "b"},
	{Name: "Stays", Key: "s"},
}

const tabSeparator = " "

func tabStyles() (active, inactive, key lipgloss.Style) {
	t := theme.Active
	active = lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Selected).Bold(true).Padding(0, 1)
	inactive = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(0, 1)
	key = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Underline(true)
	return active, inactive, key
}

func renderTab(tab Tab, active bool) string {
	as, is, ks := tabStyles()
	if active {
		return as.Render(tab.Name)
	}
	label := ks.Render(tab.Name[:1]) + is.UnsetPadding().Render(tab.Name[1:])
	return is.Render(label)
}

// TabVisualWidth is the rendered width of tab, used for mouse hit tests.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar across width with activeIdx selected.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active
	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}
	sep := lipgloss.NewStyle().Background(t.Surface).Render(tabSeparator)
	row := strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab for a shortcut key, or -1.
func TabIdxByKey(key string) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
