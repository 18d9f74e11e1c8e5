package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/pipeline"
	"github.com/theirongolddev/cardperks/internal/tui/components"
	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var monthLabels = []string{"J", "F", "M", "A", "M", "J", "J", "A", "S", "O", "N", "D"}

func (a App) renderNightsTab(cw int) string {
	t := theme.Active
	ns := a.report.Nights
	ref := a.report.GeneratedAt

	var b strings.Builder

	b.WriteString(components.MetricRow([]components.Metric{
		{Label: "Nights posted", Value: strconv.Itoa(ns.NightsPosted), Note: fmt.Sprintf("of %d goal", a.cfg.General.EliteGoal)},
		{Label: "Projected", Value: strconv.Itoa(ns.NightsTotal), Note: "incl. upcoming"},
		{Label: "Card bonus", Value: strconv.Itoa(ns.CCNightsPosted), Note: fmt.Sprintf("+%d pending", ns.CCNightsPending)},
		{Label: "Stays + GOH", Value: strconv.Itoa(ns.CurrentNights + ns.GOHNights),
			Note: fmt.Sprintf("+%d upcoming", ns.UpcomingNights+ns.GOHNightsUpcoming)},
	}, cw))
	b.WriteString("\n")

	// Milestones
	labelW, barW := 14, max(cw-36, 10)
	var ms strings.Builder
	for i, m := range a.report.Milestones {
		if i > 0 {
			ms.WriteString("\n")
		}
		ms.WriteString(components.MilestoneBar(truncStr(m.Name, labelW), ns.NightsPosted, m.Nights, labelW, barW))
		note := fmt.Sprintf("  %d to go", m.NeededPosted)
		switch {
		case m.ReachedPosted:
			note = "  reached"
		case m.NeededTotal == 0:
			note += ", on track"
		}
		ms.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(note))
	}
	if len(a.report.Milestones) == 0 {
		ms.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No elite levels configured"))
	}
	b.WriteString(components.ContentCard("Elite status", ms.String(), cw))
	b.WriteString("\n")

	// One card per card kind: statement breakdown, spend and monthly chart
	widths := components.LayoutRow(cw, len(model.Kinds))
	closeAt := pipeline.StatementClose(ref, a.svc.Settings().Rules.CloseDay)
	cards := make([]string, len(model.Kinds))
	for i, k := range model.Kinds {
		cards[i] = components.ContentCard(titleKind(k), a.renderKindBody(k, components.CardInnerWidth(widths[i])), widths[i])
	}
	b.WriteString(components.CardRow(cards))
	b.WriteString("\n")

	muted := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)
	b.WriteString(muted.Render(" Statement closed " + cli.FormatDate(closeAt)))
	if a.result != nil {
		for _, d := range a.result.MissingDirs {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(t.Pending).Background(t.Background).Render(" No transactions folder: " + d))
		}
	}
	return b.String()
}

func titleKind(k model.CardKind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (a App) renderKindBody(k model.CardKind, innerW int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	money := lipgloss.NewStyle().Foreground(t.Money).Background(t.Surface)
	nights := lipgloss.NewStyle().Foreground(t.Nights).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sp := a.report.Spending[k]
	if !sp.HasData {
		return dim.Render("No transactions loaded")
	}
	br := a.report.Breakdown[k]

	row := func(l, v string) string {
		gap := max(innerW-lipgloss.Width(l)-lipgloss.Width(v), 1)
		return label.Render(l) + lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap)) + v
	}

	var lines []string
	lines = append(lines,
		row("Bonus nights", nights.Render(fmt.Sprintf("%d posted, %d pending", br.Posted, br.Pending))),
		row("YTD spend", money.Render(cli.FormatMoney(sp.YTDSpending))),
	)
	if k == model.Personal {
		lines = append(lines, row("Lifetime spend", money.Render(cli.FormatMoney(sp.TotalSpending))))
	}
	lines = append(lines, row("To next bonus", money.Render(cli.FormatMoney(sp.SpendToNextBonus))))
	if k == model.Personal && sp.SpendToCertificate.IsPositive() {
		lines = append(lines, row("To certificate", money.Render(cli.FormatMoney(sp.SpendToCertificate))))
	}

	months := pipeline.AggregateMonths(a.svc.Ledger(k), a.report.GeneratedAt.Year())
	values := make([]float64, len(months))
	for i, m := range months {
		values[i] = m.Spend.InexactFloat64()
	}
	lines = append(lines, "", components.ColumnChart(values, monthLabels, t.Money, 4))
	return strings.Join(lines, "\n")
}
