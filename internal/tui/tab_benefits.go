package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cardperks/internal/benefits"
	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/tui/components"
	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// benefitsState is the Benefits tab cursor. years remembers the selected
// anniversary year per card group base key.
type benefitsState struct {
	card        int
	years       map[string]int
	cursor      int
	pendingOnly bool
}

func newBenefitsState() benefitsState {
	return benefitsState{years: make(map[string]int)}
}

func (s *benefitsState) move(delta, n int) {
	s.cursor = min(max(s.cursor+delta, 0), max(n-1, 0))
}

func (s *benefitsState) clamp(a *App) {
	s.card = min(max(s.card, 0), max(len(a.groups)-1, 0))
	s.move(0, len(a.benefitRows()))
}

func (a App) currentGroup() (benefits.CardGroup, bool) {
	if len(a.groups) == 0 || a.ben.card >= len(a.groups) {
		return benefits.CardGroup{}, false
	}
	return a.groups[a.ben.card], true
}

// currentYear is the selected year of the current group, or the year
// containing today when none was picked.
func (a App) currentYear(g benefits.CardGroup) int {
	if y, ok := a.ben.years[g.Base]; ok {
		if _, exists := g.Years[y]; exists {
			return y
		}
	}
	return a.calc.DefaultYear(g)
}

// benefitGroups returns the selected card-year's benefits grouped for display.
func (a App) benefitGroups() []benefits.CategoryGroup {
	g, ok := a.currentGroup()
	if !ok {
		return nil
	}
	year := a.currentYear(g)
	bs := a.calc.ForYear(g.Years[year], year)
	if a.ben.pendingOnly {
		pending := bs[:0:0]
		for _, b := range bs {
			if !b.Posted {
				pending = append(pending, b)
			}
		}
		bs = pending
	}
	groups := benefits.GroupByCategory(bs)
	benefits.SortCategories(groups)
	for _, cg := range groups {
		benefits.SortByPeriod(cg.Benefits)
	}
	return groups
}

// benefitRows flattens benefitGroups in display order; the cursor indexes it.
func (a App) benefitRows() []model.Benefit {
	var out []model.Benefit
	for _, g := range a.benefitGroups() {
		out = append(out, g.Benefits...)
	}
	return out
}

func (a App) updateBenefitsKey(key string) (App, bool) {
	switch key {
	case "j", "down":
		a.ben.move(1, len(a.benefitRows()))
	case "k", "up":
		a.ben.move(-1, len(a.benefitRows()))
	case "g", "home":
		a.ben.cursor = 0
	case "G", "end":
		a.ben.move(len(a.benefitRows()), len(a.benefitRows()))
	case "tab":
		if len(a.groups) > 0 {
			a.ben.card = (a.ben.card + 1) % len(a.groups)
			a.ben.cursor = 0
		}
	case "shift+tab":
		if len(a.groups) > 0 {
			a.ben.card = (a.ben.card - 1 + len(a.groups)) % len(a.groups)
			a.ben.cursor = 0
		}
	case "[", "]":
		a.shiftYear(key == "]")
	case "p":
		a.ben.pendingOnly = !a.ben.pendingOnly
		a.ben.cursor = 0
	case " ", "enter":
		a.toggleSelected()
	default:
		return a, false
	}
	return a, true
}

// shiftYear moves to the next newer or older anniversary year of the card.
func (a *App) shiftYear(newer bool) {
	g, ok := a.currentGroup()
	if !ok {
		return
	}
	years := g.SortedYears() // latest first
	cur := a.currentYear(g)
	for i, y := range years {
		if y != cur {
			continue
		}
		switch {
		case newer && i > 0:
			a.ben.years[g.Base] = years[i-1]
		case !newer && i < len(years)-1:
			a.ben.years[g.Base] = years[i+1]
		default:
			return
		}
		a.ben.cursor = 0
		return
	}
}

func (a *App) toggleSelected() {
	rows := a.benefitRows()
	if a.ben.cursor >= len(rows) {
		return
	}
	b := rows[a.ben.cursor]
	g, _ := a.currentGroup()
	year := a.currentYear(g)

	if off, reason := a.calc.Disabled(b, year); off {
		a.setMessage(b.Category+": "+reason, true)
		return
	}
	annYear := 0
	if benefits.RenewalTypeOf(b.Period) == model.CalendarYear {
		annYear = year
	}
	if err := a.calc.Toggle(b.BenefitID, b.Period, annYear); err != nil {
		a.setMessage("Saving benefit: "+err.Error(), true)
		return
	}
	state := "not posted"
	if a.calc.State(b.BenefitID, b.Period).Posted {
		state = "posted"
	}
	a.setMessage(fmt.Sprintf("%s %s: %s", b.Category, b.Period, state), false)
	a.recompute()
}

func (a App) renderBenefitsTab(cw, h int) string {
	t := theme.Active
	g, ok := a.currentGroup()
	if !ok {
		return components.ContentCard("Benefits", lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No cards in "+a.cfg.General.BenefitsFile), cw)
	}
	year := a.currentYear(g)
	key := g.Years[year]
	card, _ := a.calc.Config().Card(key)

	accent := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	money := lipgloss.NewStyle().Foreground(t.Money).Background(t.Surface)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	start, end, _ := a.calc.AnniversaryRange(key, year)
	ys := a.svc.YearSummary(a.svc.BenefitsForYear(key, year), card.AnnualFee, year)

	var top strings.Builder
	top.WriteString(accent.Render(fmt.Sprintf("‹ %s ›", g.DisplayName)))
	top.WriteString(muted.Render(fmt.Sprintf("  %d/%d  ", a.ben.card+1, len(a.groups))))
	top.WriteString(dim.Render(fmt.Sprintf("[%s - %s]", cli.FormatDate(start), cli.FormatDate(end))))
	if a.ben.pendingOnly {
		top.WriteString(muted.Render("  pending only"))
	}
	top.WriteString("\n")
	top.WriteString(muted.Render("Posted "))
	top.WriteString(money.Render(cli.FormatDollars(ys.TotalPosted)))
	top.WriteString(muted.Render(" of " + cli.FormatDollars(ys.TotalPotential) + "  fee " + cli.FormatDollars(card.AnnualFee) + "  net "))
	top.WriteString(a.netStyle(ys.NetValuePosted).Render(cli.FormatDollars(ys.NetValuePosted)))
	top.WriteString(muted.Render("  " + cli.FormatPercent(ys.ROIPosted) + " ROI"))
	header := components.ContentCard("", top.String(), cw)

	innerW := components.CardInnerWidth(cw)
	var lines []string
	cursorLine := 0
	idx := 0
	for _, cg := range a.benefitGroups() {
		title := cg.Category
		if p := benefits.Monthly(cg.Benefits); p.TotalCount > 0 {
			title += fmt.Sprintf("  %d/%d months, %s of %s", p.PostedCount, p.TotalCount,
				cli.FormatDollars(p.Posted), cli.FormatDollars(p.Total))
		}
		lines = append(lines, head.Render(truncStr(title, innerW)))
		for _, b := range cg.Benefits {
			if idx == a.ben.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, a.renderBenefitRow(b, year, idx == a.ben.cursor, innerW))
			idx++
		}
	}
	if len(lines) == 0 {
		lines = append(lines, dim.Render("Nothing to show for this year"))
	}

	// Scroll so the cursor stays in view.
	visible := max(h-lipgloss.Height(header)-2, 3)
	offset := min(max(cursorLine-visible+1, 0), max(len(lines)-visible, 0))
	last := min(offset+visible, len(lines))

	return header + "\n" + components.ContentCard("", strings.Join(lines[offset:last], "\n"), cw)
}

func (a App) netStyle(v float64) lipgloss.Style {
	t := theme.Active
	if v < 0 {
		return lipgloss.NewStyle().Foreground(t.Negative).Background(t.Surface)
	}
	return lipgloss.NewStyle().Foreground(t.Posted).Background(t.Surface)
}

func (a App) renderBenefitRow(b model.Benefit, year int, selected bool, w int) string {
	t := theme.Active
	bg := t.Surface
	if selected {
		bg = t.Selected
	}
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(bg)
	mark := lipgloss.NewStyle().Foreground(t.Pending).Background(bg).Render("○")
	status := ""

	off, reason := a.calc.Disabled(b, year)
	switch {
	case off:
		mark = dim.Render("-")
		status = reason
	case b.Posted:
		mark = lipgloss.NewStyle().Foreground(t.Posted).Background(bg).Render("●")
		if b.PostDate != nil {
			status = "posted " + cli.FormatShortDate(*b.PostDate)
		} else {
			status = "posted"
		}
	}

	amount := cli.FormatDollars(b.Value())
	if b.CustomAmount != nil && *b.CustomAmount > 0 {
		amount += "*"
	}
	line := fmt.Sprintf(" %s %-12s %10s  %s", mark, b.Period, amount, dim.Render(status))
	row := text.Render(line)
	return lipgloss.NewStyle().Background(bg).Width(w).Render(row)
}
