package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/tui/components"
	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCardsTab(cw int) string {
	t := theme.Active
	if len(a.report.Cards) == 0 {
		return components.ContentCard("Cards", lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No cards in "+a.cfg.General.BenefitsFile), cw)
	}

	var posted, potential, fees float64
	for _, c := range a.report.Cards {
		posted += c.Summary.TotalPosted
		potential += c.Summary.TotalPotential
		fees += c.Fee
	}

	var b strings.Builder
	b.WriteString(components.MetricRow([]components.Metric{
		{Label: "Benefits used", Value: cli.FormatDollars(posted), Note: "of " + cli.FormatDollars(potential)},
		{Label: "Annual fees", Value: cli.FormatDollars(fees), Note: fmt.Sprintf("%d cards", len(a.report.Cards))},
		{Label: "Net value", Value: cli.FormatDollars(posted - fees), Note: "posted minus fees"},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	nameW := max(innerW-60, 12)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	money := lipgloss.NewStyle().Foreground(t.Money).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	var rows strings.Builder
	rows.WriteString(head.Render(fmt.Sprintf("%-*s %6s %9s %9s %9s %7s", nameW, "Card", "Year", "Fee", "Posted", "Net", "ROI")))
	rows.WriteString("\n")
	for _, c := range a.report.Cards {
		net := c.Summary.NetValuePosted
		netStyle := money
		if net < 0 {
			netStyle = lipgloss.NewStyle().Foreground(t.Negative).Background(t.Surface)
		}
		rows.WriteString(text.Render(fmt.Sprintf("%-*s", nameW, truncStr(c.Name, nameW))))
		rows.WriteString(space + dim.Render(fmt.Sprintf("%6d", c.Year)))
		rows.WriteString(space + dim.Render(fmt.Sprintf("%9s", cli.FormatDollars(c.Fee))))
		rows.WriteString(space + money.Render(fmt.Sprintf("%9s", cli.FormatDollars(c.Summary.TotalPosted))))
		rows.WriteString(space + netStyle.Render(fmt.Sprintf("%9s", cli.FormatDollars(net))))
		rows.WriteString(space + dim.Render(fmt.Sprintf("%7s", cli.FormatPercent(c.Summary.ROIPosted))))
		rows.WriteString("\n")

		pct := 0.0
		if c.Summary.TotalPotential > 0 {
			pct = c.Summary.TotalPosted / c.Summary.TotalPotential
		}
		rows.WriteString(dim.Render("  "))
		rows.WriteString(components.ProgressBar(pct, max(innerW-8, 10)))
		rows.WriteString("\n")
	}
	b.WriteString(components.ContentCard("Current anniversary year", strings.TrimRight(rows.String(), "\n"), cw))
	return b.String()
}
