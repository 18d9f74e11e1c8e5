package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/cardperks/internal/model"
)

func parseTestDate(s string) (time.Time, error) {
	return time.Parse(model.DateLayout, s)
}

func TestStatementClose(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{model.Date(2025, 2, 15), model.Date(2025, 2, 23)},
		{model.Date(2025, 2, 3), model.Date(2025, 2, 23)},
		{model.Date(2025, 2, 2), model.Date(2025, 1, 23)},
		{model.Date(2025, 1, 1), model.Date(2024, 12, 23)},
		{time.Date(2025, 3, 31, 18, 30, 0, 0, time.UTC), model.Date(2025, 3, 23)},
	}
	for _, tt := range tests {
		if got := StatementClose(tt.now, 23); !got.Equal(tt.want) {
			t.Errorf("StatementClose(%s) = %s, want %s", tt.now.Format(model.DateLayout), got.Format(model.DateLayout), tt.want.Format(model.DateLayout))
		}
	}
}

func TestYearlyBreakdown(t *testing.T) {
	txns := []model.Transaction{
		txn("2024-06-01", "2024-06-02", "Sale", "-6000"), // prior year
		txn("2025-01-10", "2025-01-12", "Sale", "-5000"), // crosses tier 2, posted
		txn("2025-02-20", "2025-02-25", "Sale", "-5000"), // crosses tier 3, after close
	}
	l := Process(model.Personal, txns, DefaultRules())
	b := YearlyBreakdown(l, model.Date(2025, 2, 26), 23)

	if b.Total != 4 || b.Posted != 2 || b.Pending != 2 {
		t.Errorf("breakdown = %+v, want total 4 posted 2 pending 2", b)
	}

	if got := YearlyBreakdown(model.Ledger{}, model.Date(2025, 2, 26), 23); got != (model.NightsBreakdown{}) {
		t.Errorf("empty ledger breakdown = %+v", got)
	}
	if got := YearlyBreakdown(l, model.Date(2030, 5, 1), 23); got != (model.NightsBreakdown{}) {
		t.Errorf("no rows in year breakdown = %+v", got)
	}
}

func TestSpendingSummary_Personal(t *testing.T) {
	now := time.Now()
	y := now.Year()
	date := func(m int) string { return time.Date(y, time.Month(m), 10, 0, 0, 0, 0, time.UTC).Format(model.DateLayout) }
	l := Process(model.Personal, []model.Transaction{
		txn(date(1), date(1), "Sale", "-5000"),
		txn(date(1), date(1), "Sale", "-500"),
	}, DefaultRules())

	s := SpendingSummary(l, now, DefaultRules())
	if !s.HasData {
		t.Fatal("HasData = false")
	}
	if !s.TotalSpending.Equal(d("5500")) || !s.YTDSpending.Equal(d("5500")) {
		t.Errorf("total/ytd = %s/%s", s.TotalSpending, s.YTDSpending)
	}
	if s.CurrentTier != 1 {
		t.Errorf("tier = %d, want 1", s.CurrentTier)
	}
	if !s.SpendToNextBonus.Equal(d("4500")) {
		t.Errorf("to next = %s, want 4500", s.SpendToNextBonus)
	}
	if !s.SpendToCertificate.Equal(d("9500")) {
		t.Errorf("to certificate = %s, want 9500", s.SpendToCertificate)
	}
	if !s.CurrentThreshold.Equal(d("5000")) || !s.NextThreshold.Equal(d("10000")) {
		t.Errorf("thresholds = %s/%s", s.CurrentThreshold, s.NextThreshold)
	}
}

func TestSpendingSummary_Business(t *testing.T) {
	now := time.Now()
	date := time.Date(now.Year(), 1, 5, 0, 0, 0, 0, time.UTC).Format(model.DateLayout)
	l := Process(model.Business, []model.Transaction{txn(date, date, "Sale", "-12000")}, DefaultRules())

	s := SpendingSummary(l, now, DefaultRules())
	if !s.YTDSpending.Equal(d("12000")) || s.CurrentTier != 1 || !s.SpendToNextBonus.Equal(d("8000")) {
		t.Errorf("summary = %+v", s)
	}
	if !s.SpendToCertificate.IsZero() {
		t.Errorf("business certificate = %s, want 0", s.SpendToCertificate)
	}
}

func TestSpendingSummary_Empty(t *testing.T) {
	s := SpendingSummary(model.Ledger{Kind: model.Personal}, time.Now(), DefaultRules())
	if s.HasData {
		t.Error("HasData = true for empty ledger")
	}
}

func TestSpendingSummary_NoRowsThisYear(t *testing.T) {
	l := Process(model.Personal, []model.Transaction{txn("2001-01-01", "2001-01-02", "Sale", "-6000")}, DefaultRules())
	s := SpendingSummary(l, model.Date(2025, 6, 1), DefaultRules())
	if !s.YTDSpending.IsZero() || !s.SpendToCertificate.Equal(d("15000")) {
		t.Errorf("ytd = %s, cert = %s", s.YTDSpending, s.SpendToCertificate)
	}
}

func TestAggregateMonthsAndFilters(t *testing.T) {
	l := Process(model.Personal, []model.Transaction{
		txn("2025-01-10", "2025-01-12", "Sale", "-100"),
		txn("2025-03-10", "2025-03-12", "Sale", "-5000"),
		txn("2024-03-10", "2024-03-12", "Sale", "-1"),
	}, DefaultRules())

	months := AggregateMonths(l, 2025)
	if len(months) != 12 {
		t.Fatalf("months = %d", len(months))
	}
	if !months[0].Spend.Equal(d("100")) || months[2].Nights != 2 || months[1].Count != 0 {
		t.Errorf("months = %+v", months[:3])
	}

	if got := len(FilterByYear(l, 2024).Entries); got != 1 {
		t.Errorf("FilterByYear = %d, want 1", got)
	}
	if got := len(NightEvents(l).Entries); got != 1 {
		t.Errorf("NightEvents = %d, want 1", got)
	}
	if got := len(FilterByDescription(l, "sAlE").Entries); got != 3 {
		t.Errorf("FilterByDescription = %d, want 3", got)
	}
}
