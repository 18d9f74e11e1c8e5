package benefits

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/theirongolddev/cardperks/internal/model"
)

func TestGroupCards(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	groups := c.GroupCards()
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	g := groups[0]
	if g.Base != "test_card" || g.DisplayName != "Test Card" {
		t.Errorf("group = %+v", g)
	}
	if got := g.SortedYears(); !slices.Equal(got, []int{2026, 2025}) {
		t.Errorf("years = %v", got)
	}
	if g.Years[2025] != "test_card_2025" {
		t.Errorf("2025 key = %q", g.Years[2025])
	}
}

func TestDefaultYear(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"inside 2025 anniversary year", model.Date(2025, 8, 1), 2025},
		{"before any range", model.Date(2025, 6, 15), 2026},
		{"inside 2026 anniversary year", model.Date(2026, 7, 15), 2026},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCalc(t, tt.today)
			if got := c.DefaultYear(c.GroupCards()[0]); got != tt.want {
				t.Errorf("DefaultYear = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestForYear(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	bs := c.ForYear("test_card_2025", 2025)

	count := map[string]int{}
	for _, b := range bs {
		count[b.Category]++
	}
	// 2025-07-15..2026-07-14 touches 2025-Q3 through 2026-Q3 and
	// 2025-Jul through 2026-Jul.
	want := map[string]int{"Quarterly Credit": 5, "Monthly Credit": 13, "Anniversary Bonus": 1, "Travel": 1}
	for cat, n := range want {
		if count[cat] != n {
			t.Errorf("%s = %d, want %d", cat, count[cat], n)
		}
	}
	if len(bs) != 20 {
		t.Errorf("total = %d, want 20", len(bs))
	}
}

func TestDisabled(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	y := 2024
	b := model.Benefit{Period: "2025-Jul", Frequency: model.Monthly, Posted: true, PostedAnniversaryYear: &y}

	if off, reason := c.Disabled(b, 2025); !off || reason != "Used in 2024" {
		t.Errorf("Disabled = %v, %q", off, reason)
	}
	if off, _ := c.Disabled(b, 2024); off {
		t.Error("disabled in the year it was used")
	}

	if err := c.Toggle("test_card_2025_global_entry", "2024-A07", 0); err != nil {
		t.Fatal(err)
	}
	ge, err := c.FindBenefit("test_card_2025", "global_entry", "2025-A07")
	if err != nil {
		t.Fatal(err)
	}
	if off, reason := c.Disabled(ge, 2025); !off || reason != "Used in 2024, available again in 2028" {
		t.Errorf("every-4 Disabled = %v, %q", off, reason)
	}
}

func TestBulkMonthly(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 8, 20))
	const card, cat = "test_card_2025", "Monthly Credit"

	n, err := c.BulkMonthly(card, cat, 2025, PastOn)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("past-on changed %d, want 2", n)
	}
	st := c.State("test_card_monthly_benefit", "2025-Aug")
	if !st.Posted || st.PostedAnniversaryYear == nil || *st.PostedAnniversaryYear != 2025 {
		t.Errorf("2025-Aug state = %+v", st)
	}

	if n, _ = c.BulkMonthly(card, cat, 2025, AllOn); n != 11 {
		t.Errorf("all-on changed %d, want 11", n)
	}
	if n, _ = c.BulkMonthly(card, cat, 2025, FutureOff); n != 11 {
		t.Errorf("future-off changed %d, want 11", n)
	}
	if n, _ = c.BulkMonthly(card, cat, 2025, AllOff); n != 2 {
		t.Errorf("all-off changed %d, want 2", n)
	}

	if _, err := c.BulkMonthly("missing", cat, 2025, AllOn); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("err = %v, want ErrUnknownCard", err)
	}
}

func TestBulkMonthly_SkipsMonthsUsedInOtherYear(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 8, 20))
	if err := c.Toggle("test_card_monthly_benefit", "2025-Jul", 2024); err != nil {
		t.Fatal(err)
	}
	n, err := c.BulkMonthly("test_card_2025", "Monthly Credit", 2025, AllOn)
	if err != nil {
		t.Fatal(err)
	}
	if n != 12 {
		t.Errorf("changed %d, want 12", n)
	}
	if y := c.State("test_card_monthly_benefit", "2025-Jul").PostedAnniversaryYear; y == nil || *y != 2024 {
		t.Errorf("2025-Jul year = %v, want 2024", y)
	}
}

func TestParseBulkMode(t *testing.T) {
	for _, s := range []string{"all-on", "all-off", "past-on", "future-off"} {
		if m, err := ParseBulkMode(s); err != nil || string(m) != s {
			t.Errorf("ParseBulkMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseBulkMode("sideways"); err == nil {
		t.Error("expected error")
	}
}

func TestMonthly(t *testing.T) {
	half := 10.0
	bs := []model.Benefit{
		{Frequency: model.Monthly, Period: "2025-Jan", Amount: 25, Posted: true},
		{Frequency: model.Monthly, Period: "2025-Feb", Amount: 25, Posted: true, CustomAmount: &half},
		{Frequency: model.Monthly, Period: "2025-Mar", Amount: 25},
		{Frequency: model.Yearly, Period: "2025", Amount: 300, Posted: true},
	}
	p := Monthly(bs)
	if p.Posted != 35 || p.Total != 60 || p.PostedCount != 2 || p.TotalCount != 3 {
		t.Errorf("progress = %+v", p)
	}
}
