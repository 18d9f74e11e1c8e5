package components

import (
	"fmt"

	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

func clamp01(pct float64) float64 {
	return min(max(pct, 0), 1)
}

// ColorForProgress moves from pending toward posted as pct approaches 1.
func ColorForProgress(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Posted
	case pct >= 0.5:
		return t.Accent
	default:
		return t.Pending
	}
}

func bar(pct float64, width int) string {
	t := theme.Active
	b := progress.New(
		progress.WithSolidFill(string(ColorForProgress(pct))),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	b.EmptyColor = string(t.TextDim)
	return b.ViewAs(clamp01(pct))
}

// ProgressBar renders a bar with a trailing percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pctStyle := lipgloss.NewStyle().Foreground(ColorForProgress(pct)).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")
	return bar(pct, width) + space + pctStyle.Render(fmt.Sprintf("%3.0f%%", clamp01(pct)*100))
}

// MilestoneBar renders "label [bar] current/target", with the label padded
// to labelW.
func MilestoneBar(label string, current, target, labelW, barW int) string {
	t := theme.Active
	pct := 0.0
	if target > 0 {
		pct = float64(current) / float64(target)
	}
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(ColorForProgress(pct)).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space + bar(pct, barW) + space +
		countStyle.Render(fmt.Sprintf("%d/%d", current, target))
}
