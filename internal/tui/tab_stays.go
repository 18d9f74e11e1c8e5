package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/tui/components"
	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// staysState indexes one list of stays followed by GOH nights.
type staysState struct {
	cursor  int
	confirm bool // x pressed once on the selected row
}

func (s *staysState) move(delta, n int) {
	s.cursor = min(max(s.cursor+delta, 0), max(n-1, 0))
	s.confirm = false
}

func (s *staysState) clamp(n int) {
	s.cursor = min(max(s.cursor, 0), max(n-1, 0))
}

func (a App) updateStaysKey(key string) (App, bool) {
	n := len(a.stays.Stays()) + len(a.stays.GOHNights())
	switch key {
	case "j", "down":
		a.stayView.move(1, n)
	case "k", "up":
		a.stayView.move(-1, n)
	case "g", "home":
		a.stayView.move(-n, n)
	case "G", "end":
		a.stayView.move(n, n)
	case "x", "delete":
		if n == 0 {
			return a, true
		}
		if !a.stayView.confirm {
			a.stayView.confirm = true
			a.setMessage("Press x again to delete", false)
			return a, true
		}
		a.stayView.confirm = false
		a.deleteSelectedStay()
	default:
		a.stayView.confirm = false
		return a, false
	}
	return a, true
}

func (a *App) deleteSelectedStay() {
	nStays := len(a.stays.Stays())
	var (
		ok   bool
		err  error
		what string
	)
	if a.stayView.cursor < nStays {
		what = a.stays.Stays()[a.stayView.cursor].Name
		ok, err = a.stays.DeleteStay(a.stayView.cursor)
	} else {
		what = "GOH " + a.stays.GOHNights()[a.stayView.cursor-nStays].Name
		ok, err = a.stays.DeleteGOH(a.stayView.cursor - nStays)
	}
	switch {
	case err != nil:
		a.setMessage(err.Error(), true)
	case ok:
		a.setMessage("Deleted "+what, false)
	}
	a.recompute()
}

func (a App) renderStaysTab(cw, h int) string {
	t := theme.Active
	ref := a.report.GeneratedAt
	tot := a.stays.Count(ref)

	var b strings.Builder
	b.WriteString(components.MetricRow([]components.Metric{
		{Label: "Stay nights", Value: fmt.Sprint(tot.StayCurrent), Note: fmt.Sprintf("+%d upcoming", tot.StayUpcoming)},
		{Label: "GOH nights", Value: fmt.Sprint(tot.GOHCurrent), Note: fmt.Sprintf("+%d upcoming", tot.GOHUpcoming)},
		{Label: "Entries", Value: fmt.Sprint(len(a.stays.Stays()) + len(a.stays.GOHNights())), Note: "x x deletes"},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	row := func(idx int, name, dates, nights string, upcoming bool) string {
		bg := t.Surface
		if idx == a.stayView.cursor {
			bg = t.Selected
		}
		status, fg := "done", t.Posted
		if upcoming {
			status, fg = "upcoming", t.Pending
		}
		nameW := max(innerW-42, 10)
		line := fmt.Sprintf(" %-*s %-23s %6s  ", nameW, truncStr(name, nameW), dates, nights)
		return lipgloss.NewStyle().Background(bg).Width(innerW).Render(
			lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg).Render(line) +
				lipgloss.NewStyle().Foreground(fg).Background(bg).Render(status))
	}

	var lines []string
	lines = append(lines, head.Render("Stays"))
	ss := a.stays.Stays()
	for i, s := range ss {
		dates := cli.FormatDate(s.CheckIn) + " - " + cli.FormatShortDate(s.CheckOut)
		lines = append(lines, row(i, s.Name, dates, fmt.Sprintf("%dn", s.Nights()), s.CheckOut.After(ref)))
	}
	if len(ss) == 0 {
		lines = append(lines, dim.Render(" No stays. Add one with: cardperks stays add"))
	}
	lines = append(lines, "", head.Render("Guest of honor nights"))
	gs := a.stays.GOHNights()
	for i, g := range gs {
		lines = append(lines, row(len(ss)+i, g.Name, cli.FormatDate(g.Date), "1n", g.Date.After(ref)))
	}
	if len(gs) == 0 {
		lines = append(lines, dim.Render(" No GOH nights. Add one with: cardperks goh add"))
	}

	// Keep the cursor row on screen.
	cursorLine := 1 + a.stayView.cursor
	if a.stayView.cursor >= len(ss) {
		cursorLine += 2
		if len(ss) == 0 {
			cursorLine++
		}
	}
	visible := max(h-lipgloss.Height(b.String())-2, 3)
	offset := min(max(cursorLine-visible+1, 0), max(len(lines)-visible, 0))
	last := min(offset+visible, len(lines))

	b.WriteString(components.ContentCard("", strings.Join(lines[offset:last], "\n"), cw))
	return b.String()
}
