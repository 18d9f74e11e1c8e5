package benefits

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
)

const testYAML = `
cards:
  test_card_2025:
    display_name: Test Card
    year: 2025
    annual_fee: 695
    renewal_month: 7
    renewal_day: 15
    benefits:
      - {id: quarterly_benefit, category: Quarterly Credit, amount: 100, frequency: quarterly, renewal_type: calendar_year}
      - {id: anniversary_benefit, category: Anniversary Bonus, amount: 200, frequency: yearly, renewal_type: card_anniversary}
      - {id: monthly_benefit, category: Monthly Credit, amount: 25, frequency: monthly, renewal_type: calendar_year}
      - {id: global_entry, category: Travel, amount: 120, frequency: every_4_years, renewal_type: card_anniversary}
  test_card_2026:
    display_name: Test Card
    year: 2026
    annual_fee: 795
    renewal_month: 7
    renewal_day: 15
    benefits:
      - {id: quarterly_benefit, category: Quarterly Credit, amount: 100, frequency: quarterly, renewal_type: calendar_year}
  nofee:
    display_name: No Fee
    year: 2025
    annual_fee: 0
    renewal_month: 1
    renewal_day: 1
    benefits:
      - {id: bonus, category: Bonus, amount: 10, frequency: half_yearly, renewal_type: card_anniversary}
`

// memStore is an in-memory StateStore.
type memStore struct {
	states map[string]model.BenefitState
	saves  int
	fail   error
}

func (m *memStore) BenefitStates() (map[string]model.BenefitState, error) {
	out := make(map[string]model.BenefitState, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) SaveBenefitState(id, period string, st model.BenefitState) error {
	if m.fail != nil {
		return m.fail
	}
	m.saves++
	m.states[model.StateKey(id, period)] = st
	return nil
}

func newTestCalc(t *testing.T, today time.Time) (*Calculator, *memStore) {
	t.Helper()
	cfg, err := config.ParseBenefits([]byte(testYAML))
	if err != nil {
		t.Fatalf("ParseBenefits: %v", err)
	}
	st := &memStore{states: map[string]model.BenefitState{}}
	c, err := New(cfg, st, WithClock(func() time.Time { return today }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, st
}

func TestToggle(t *testing.T) {
	c, st := newTestCalc(t, model.Date(2025, 6, 15))

	if err := c.Toggle("card_x", "2025-Q1", 0); err != nil {
		t.Fatal(err)
	}
	got := c.State("card_x", "2025-Q1")
	if !got.Posted || got.PostDate == nil || got.PostDate.Format(model.DateLayout) != "2025-06-15" {
		t.Errorf("after toggle on: %+v", got)
	}
	if got.PostedAnniversaryYear != nil {
		t.Errorf("anniversary year set without one: %v", *got.PostedAnniversaryYear)
	}

	if err := c.Toggle("card_x", "2025-Q1", 0); err != nil {
		t.Fatal(err)
	}
	got = c.State("card_x", "2025-Q1")
	if got.Posted || got.PostDate != nil {
		t.Errorf("after toggle off: %+v", got)
	}

	if err := c.Toggle("card_x", "2025-Jan", 2025); err != nil {
		t.Fatal(err)
	}
	if y := c.State("card_x", "2025-Jan").PostedAnniversaryYear; y == nil || *y != 2025 {
		t.Errorf("posted anniversary year = %v, want 2025", y)
	}
	if st.saves != 3 {
		t.Errorf("saves = %d, want 3", st.saves)
	}
}

func TestToggle_StoreFailureLeavesState(t *testing.T) {
	c, st := newTestCalc(t, model.Date(2025, 6, 15))
	st.fail = errors.New("disk full")
	if err := c.Toggle("card_x", "2025", 0); err == nil {
		t.Fatal("expected error")
	}
	if c.State("card_x", "2025").Posted {
		t.Error("state changed despite failed save")
	}
}

func TestCustomAmount(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))

	if got := c.CustomAmount("card_x", "2025-Q1", 100); got != 100 {
		t.Errorf("default = %v, want 100", got)
	}
	v := 75.0
	if err := c.SetCustomAmount("card_x", "2025-Q1", &v); err != nil {
		t.Fatal(err)
	}
	if got := c.CustomAmount("card_x", "2025-Q1", 100); got != 75 {
		t.Errorf("custom = %v, want 75", got)
	}
	if err := c.SetCustomAmount("card_x", "2025-Q1", nil); err != nil {
		t.Fatal(err)
	}
	if c.State("card_x", "2025-Q1").CustomAmount != nil {
		t.Error("custom amount not cleared")
	}
}

func TestSetCustomAmountChecked(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	b, err := c.FindBenefit("test_card_2025", "quarterly_benefit", "2025-Q1")
	if err != nil {
		t.Fatal(err)
	}
	over := 150.0
	if err := c.SetCustomAmountChecked(b, &over); !errors.Is(err, ErrCustomExceedsAmount) {
		t.Errorf("err = %v, want ErrCustomExceedsAmount", err)
	}
}

func TestSetPosted(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	pd := model.Date(2025, 3, 2)
	if err := c.SetPosted("id", "2025", true, &pd); err != nil {
		t.Fatal(err)
	}
	if got := c.State("id", "2025"); !got.Posted || !got.PostDate.Equal(pd) {
		t.Errorf("state = %+v", got)
	}
	if err := c.SetPosted("id", "2025", true, nil); err != nil {
		t.Fatal(err)
	}
	if got := c.State("id", "2025").PostDate; !got.Equal(model.Date(2025, 6, 15)) {
		t.Errorf("default post date = %v", got)
	}
	if err := c.SetPosted("id", "2025", false, nil); err != nil {
		t.Fatal(err)
	}
	if c.State("id", "2025").PostDate != nil {
		t.Error("post date kept after unposting")
	}
}

func TestCardBenefits_IDs(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))

	var calendarIDs, anniversaryIDs []string
	for _, b := range c.CardBenefits("test_card_2025") {
		if RenewalTypeOf(b.Period) == model.CardAnniversary {
			anniversaryIDs = append(anniversaryIDs, b.BenefitID)
		} else {
			calendarIDs = append(calendarIDs, b.BenefitID)
		}
		if b.CardName != "Test Card" || b.CardKey != "test_card_2025" {
			t.Errorf("card fields = %q %q", b.CardName, b.CardKey)
		}
	}
	if !slices.Contains(calendarIDs, "test_card_quarterly_benefit") {
		t.Errorf("calendar IDs = %v", calendarIDs)
	}
	if !slices.Contains(anniversaryIDs, "test_card_2025_anniversary_benefit") {
		t.Errorf("anniversary IDs = %v", anniversaryIDs)
	}

	if got := c.CardBenefits("missing"); got != nil {
		t.Errorf("unknown card = %v", got)
	}
}

func TestCardBenefits_SharedCalendarState(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	if err := c.Toggle("test_card_quarterly_benefit", "2026-Q1", 0); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"test_card_2025", "test_card_2026"} {
		b, err := c.FindBenefit(key, "quarterly_benefit", "2026-Q1")
		if err != nil {
			t.Fatal(err)
		}
		if !b.Posted {
			t.Errorf("%s: shared calendar state not visible", key)
		}
	}
}

func TestCardSummary(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	if err := c.Toggle("test_card_quarterly_benefit", "2025-Q1", 0); err != nil {
		t.Fatal(err)
	}
	v := 40.0
	if err := c.SetCustomAmount("test_card_quarterly_benefit", "2025-Q1", &v); err != nil {
		t.Fatal(err)
	}

	s, ok := c.CardSummary("test_card_2025")
	if !ok {
		t.Fatal("no summary")
	}
	// 2025 periods: 4 quarters, 12 months, 1 anniversary, 1 every-4-years.
	wantPotential := 4*100.0 + 12*25.0 + 200 + 120
	if s.TotalPotential != wantPotential {
		t.Errorf("potential = %v, want %v", s.TotalPotential, wantPotential)
	}
	if s.TotalPosted != 40 {
		t.Errorf("posted = %v, want 40", s.TotalPosted)
	}
	if s.NetValuePosted != 40-695 {
		t.Errorf("net = %v", s.NetValuePosted)
	}
	posted, fee := 40.0, 695.0
	if want := (posted - fee) / fee * 100; math.Abs(s.ROIPosted-want) > 1e-9 {
		t.Errorf("roi = %v, want %v", s.ROIPosted, want)
	}

	nf, _ := c.CardSummary("nofee")
	if nf.ROIPosted != 0 || nf.ROIPotential != 0 {
		t.Errorf("zero fee ROI = %v/%v", nf.ROIPosted, nf.ROIPotential)
	}
	if _, ok := c.CardSummary("missing"); ok {
		t.Error("unknown card produced a summary")
	}
	if n := len(c.AllCardsSummary()); n != 3 {
		t.Errorf("all cards = %d, want 3", n)
	}
}

func TestBenefitsByCategory(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	groups := c.BenefitsByCategory("test_card_2025")
	var names []string
	for _, g := range groups {
		names = append(names, g.Category)
	}
	want := []string{"Quarterly Credit", "Anniversary Bonus", "Monthly Credit", "Travel"}
	if !slices.Equal(names, want) {
		t.Errorf("categories = %v, want %v", names, want)
	}

	SortCategories(groups)
	if groups[0].Category != "Monthly Credit" || groups[1].Category != "Anniversary Bonus" {
		t.Errorf("sorted = %s, %s", groups[0].Category, groups[1].Category)
	}
	if n := len(c.BenefitsByCategory("")); n != 5 {
		t.Errorf("all-card categories = %d, want 5", n)
	}
}

func TestBaseKey(t *testing.T) {
	tests := map[string]string{
		"schwab_platinum_2025": "schwab_platinum",
		"schwab_platinum":      "schwab_platinum",
		"card_":                "card_",
		"2025":                 "2025",
		"a_b_12":               "a_b",
	}
	for in, want := range tests {
		if got := BaseKey(in); got != want {
			t.Errorf("BaseKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPost(t *testing.T) {
	c, _ := newTestCalc(t, model.Date(2025, 6, 15))
	pd := model.Date(2025, 5, 20)
	if err := c.Post("id", "2025-May", &pd, 2024); err != nil {
		t.Fatal(err)
	}
	st := c.State("id", "2025-May")
	if !st.Posted || !st.PostDate.Equal(pd) || st.PostedAnniversaryYear == nil || *st.PostedAnniversaryYear != 2024 {
		t.Errorf("state = %+v", st)
	}

	if err := c.Post("id", "2025-May", nil, 0); err != nil {
		t.Fatal(err)
	}
	st = c.State("id", "2025-May")
	if st.PostedAnniversaryYear != nil || !st.PostDate.Equal(model.Date(2025, 6, 15)) {
		t.Errorf("repost = %+v", st)
	}
}
