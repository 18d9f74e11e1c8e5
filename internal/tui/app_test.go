package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/cardperks/internal/benefits"
	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/pipeline"
	"github.com/theirongolddev/cardperks/internal/stays"
	"github.com/theirongolddev/cardperks/internal/store"
	"github.com/theirongolddev/cardperks/internal/summary"

	tea "github.com/charmbracelet/bubbletea"
)

const appTestYAML = `
cards:
  hotel_card_2025:
    display_name: Hotel Card
    year: 2025
    annual_fee: 350
    renewal_month: 7
    renewal_day: 15
    benefits:
      - {id: dining, category: Dining Credit, amount: 10, frequency: monthly, renewal_type: calendar_year}
      - {id: resort, category: Resort Credit, amount: 100, frequency: yearly, renewal_type: card_anniversary}
`

func newTestApp(t *testing.T) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	bc, err := config.ParseBenefits([]byte(appTestYAML))
	if err != nil {
		t.Fatalf("ParseBenefits: %v", err)
	}
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	calc, err := benefits.New(bc, st, benefits.WithClock(func() time.Time { return today }))
	if err != nil {
		t.Fatalf("benefits.New: %v", err)
	}
	sm, err := stays.New(st)
	if err != nil {
		t.Fatalf("stays.New: %v", err)
	}
	cfg := config.DefaultConfig()

	a := NewApp(Deps{
		Config:  cfg,
		Store:   st,
		Calc:    calc,
		Stays:   sm,
		Summary: summary.New(summary.SettingsFrom(cfg), calc, sm),
	})
	a.needSetup = false
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return update(t, a, DataLoadedMsg{Result: &pipeline.LoadResult{}})
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabKeys(t *testing.T) {
	a := newTestApp(t)
	tests := []struct {
		key  string
		want int
	}{
		{"c", tabCards},
		{"b", tabBenefits},
		{"s", tabStays},
		{"n", tabNights},
	}
	for _, tt := range tests {
		a = update(t, a, key(tt.key))
		if a.activeTab != tt.want {
			t.Errorf("after %q activeTab = %d, want %d", tt.key, a.activeTab, tt.want)
		}
	}
}

func TestBenefitsSpaceTogglesSelected(t *testing.T) {
	a := newTestApp(t)
	a = update(t, a, key("b"))

	rows := a.benefitRows()
	if len(rows) == 0 {
		t.Fatal("no benefit rows for the current card year")
	}
	first := rows[0]
	if first.Posted {
		t.Fatalf("%s %s already posted", first.BenefitID, first.Period)
	}

	a = update(t, a, key(" "))
	st := a.calc.State(first.BenefitID, first.Period)
	if !st.Posted {
		t.Fatalf("%s %s not posted after toggle", first.BenefitID, first.Period)
	}
	if benefits.RenewalTypeOf(first.Period) == model.CalendarYear {
		if st.PostedAnniversaryYear == nil || *st.PostedAnniversaryYear != 2025 {
			t.Errorf("PostedAnniversaryYear = %v, want 2025", st.PostedAnniversaryYear)
		}
	}
	if a.msgIsErr || !strings.Contains(a.message, "posted") {
		t.Errorf("message = %q (err=%v)", a.message, a.msgIsErr)
	}

	a = update(t, a, key(" "))
	if a.calc.State(first.BenefitID, first.Period).Posted {
		t.Error("second toggle should unpost")
	}
}

func TestBenefitsCursorClamps(t *testing.T) {
	a := newTestApp(t)
	a = update(t, a, key("b"))
	n := len(a.benefitRows())

	a = update(t, a, key("G"))
	if a.ben.cursor != n-1 {
		t.Errorf("G cursor = %d, want %d", a.ben.cursor, n-1)
	}
	a = update(t, a, key("j"))
	if a.ben.cursor != n-1 {
		t.Errorf("j past end cursor = %d, want %d", a.ben.cursor, n-1)
	}
	a = update(t, a, key("g"))
	a = update(t, a, key("k"))
	if a.ben.cursor != 0 {
		t.Errorf("k past start cursor = %d, want 0", a.ben.cursor)
	}
}

func TestStaysDeleteNeedsConfirm(t *testing.T) {
	a := newTestApp(t)
	in := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := a.stays.AddStay("Park Hyatt", in, in.AddDate(0, 0, 3)); err != nil {
		t.Fatalf("AddStay: %v", err)
	}
	a = update(t, a, key("s"))

	a = update(t, a, key("x"))
	if got := len(a.stays.Stays()); got != 1 {
		t.Fatalf("first x deleted: %d stays left", got)
	}
	a = update(t, a, key("x"))
	if got := len(a.stays.Stays()); got != 0 {
		t.Fatalf("second x kept %d stays", got)
	}
	if !strings.Contains(a.message, "Park Hyatt") {
		t.Errorf("message = %q", a.message)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := newTestApp(t)
	want := map[int]string{
		tabNights:   "Nights posted",
		tabCards:    "Current anniversary year",
		tabBenefits: "Hotel Card",
		tabStays:    "Guest of honor nights",
	}
	for tab, text := range want {
		a.activeTab = tab
		if out := a.View(); !strings.Contains(out, text) {
			t.Errorf("tab %d view missing %q", tab, text)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := newTestApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 60, Height: 20})
	if out := a.View(); !strings.Contains(out, "too narrow") {
		t.Errorf("narrow view = %q", out)
	}
}
