// Package pipeline loads card exports, computes bonus-night ledgers,
// and aggregates them into summaries.
package pipeline

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cardperks/internal/model"
)

// closeGraceDays is how far into a month the previous statement still counts as latest.
const closeGraceDays = 2

// SpendingSummary computes progress toward the next spend bonus as of now.
func SpendingSummary(l model.Ledger, now time.Time, rules Rules) model.SpendingSummary {
	s := model.SpendingSummary{Kind: l.Kind}
	if l.Empty() {
		return s
	}
	s.HasData = true
	tr := rules.For(l.Kind)

	last := l.Entries[len(l.Entries)-1]
	var ytd decimal.Decimal
	for _, e := range l.Entries {
		if e.Year == now.Year() {
			ytd = e.YearCumulative
		}
	}
	s.YTDSpending = ytd.Round(2)

	basis := ytd
	if l.Kind == model.Personal {
		s.TotalSpending = last.Cumulative.Round(2)
		basis = last.Cumulative
		if tr.Certificate.IsPositive() {
			s.SpendToCertificate = decimal.Max(decimal.Zero, tr.Certificate.Sub(ytd)).Round(2)
		}
	}

	s.CurrentTier = Tier(basis, tr.Step)
	s.CurrentThreshold = tr.Step.Mul(decimal.NewFromInt(int64(s.CurrentTier))).Round(2)
	s.NextThreshold = tr.Step.Mul(decimal.NewFromInt(int64(s.CurrentTier + 1))).Round(2)
	s.SpendToNextBonus = decimal.Max(decimal.Zero, s.NextThreshold.Sub(basis)).Round(2)
	return s
}

// BonusNightsPosted sums every bonus-night event in the ledger.
func BonusNightsPosted(l model.Ledger) int {
	n := 0
	for _, e := range l.Entries {
		n += e.Nights
	}
	return n
}

// StatementClose returns the most recent statement close date: closeDay of
// now's month once the grace days have passed, otherwise of the prior month.
func StatementClose(now time.Time, closeDay int) time.Time {
	if closeDay < 1 || closeDay > 28 {
		closeDay = 23
	}
	if now.Day() > closeGraceDays {
		return model.Date(now.Year(), now.Month(), closeDay)
	}
	prev := model.Date(now.Year(), now.Month(), 1).AddDate(0, -1, 0)
	return model.Date(prev.Year(), prev.Month(), closeDay)
}

// YearlyBreakdown splits now's calendar-year bonus nights into those on a
// closed statement and those still pending.
func YearlyBreakdown(l model.Ledger, now time.Time, closeDay int) model.NightsBreakdown {
	var b model.NightsBreakdown
	closeAt := StatementClose(now, closeDay)
	for _, e := range l.Entries {
		if e.Year != now.Year() {
			continue
		}
		b.Total += e.Nights
		if !model.Day(e.PostDate).After(closeAt) {
			b.Posted += e.Nights
		}
	}
	b.Pending = b.Total - b.Posted
	return b
}

// MonthSpend is the spend and bonus nights for one post-date month.
type MonthSpend struct {
	Month  time.Month
	Spend  decimal.Decimal
	Nights int
	Count  int
}

// AggregateMonths groups a ledger's entries in year by post-date month.
// All twelve months are returned so charts show gaps as zeros.
func AggregateMonths(l model.Ledger, year int) []MonthSpend {
	months := make([]MonthSpend, 12)
	for i := range months {
		months[i].Month = time.Month(i + 1)
	}
	for _, e := range l.Entries {
		if e.Year != year {
			continue
		}
		m := &months[e.PostDate.Month()-1]
		m.Spend = m.Spend.Add(e.Spend)
		m.Nights += e.Nights
		m.Count++
	}
	return months
}

// FilterByYear returns entries whose post-date year is year. Zero keeps all.
func FilterByYear(l model.Ledger, year int) model.Ledger {
	if year == 0 {
		return l
	}
	out := model.Ledger{Kind: l.Kind}
	for _, e := range l.Entries {
		if e.Year == year {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// FilterByDescription keeps entries whose description contains substr,
// ignoring case.
func FilterByDescription(l model.Ledger, substr string) model.Ledger {
	if substr == "" {
		return l
	}
	out := model.Ledger{Kind: l.Kind}
	for _, e := range l.Entries {
		if containsIgnoreCase(e.Description, substr) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// NightEvents returns only entries that changed bonus nights.
func NightEvents(l model.Ledger) model.Ledger {
	out := model.Ledger{Kind: l.Kind}
	for _, e := range l.Entries {
		if e.Nights != 0 {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
