package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/cardperks/internal/model"
)

const validBenefits = `
cards:
  schwab_platinum_2025:
    display_name: Schwab Platinum
    year: 2025
    annual_fee: 695
    renewal_month: 2
    renewal_day: 29
    benefits:
      - id: uber
        category: Uber Cash
        amount: 15
        frequency: monthly
        renewal_type: calendar_year
  alpha:
    display_name: ""
    year: 2025
    annual_fee: 0
    renewal_month: 1
    renewal_day: 1
    benefits: []
`

func TestParseBenefits(t *testing.T) {
	bc, err := ParseBenefits([]byte(validBenefits))
	if err != nil {
		t.Fatalf("ParseBenefits: %v", err)
	}
	if got := bc.Keys(); len(got) != 2 || got[0] != "schwab_platinum_2025" || got[1] != "alpha" {
		t.Errorf("keys = %v, want file order", got)
	}
	card, ok := bc.Card("schwab_platinum_2025")
	if !ok {
		t.Fatal("card missing")
	}
	if card.Key != "schwab_platinum_2025" || card.AnnualFee != 695 || len(card.Benefits) != 1 {
		t.Errorf("card = %+v", card)
	}
	if b := card.Benefits[0]; b.Frequency != model.Monthly || b.RenewalType != model.CalendarYear || b.Amount != 15 {
		t.Errorf("benefit = %+v", b)
	}
	if a, _ := bc.Card("alpha"); a.DisplayName != "alpha" {
		t.Errorf("display name default = %q", a.DisplayName)
	}
}

func TestValidateBenefits(t *testing.T) {
	card := func(body string) string {
		return "cards:\n  c1:\n" + body
	}
	full := `    display_name: C
    year: 2025
    annual_fee: 1
    renewal_month: 3
    renewal_day: 1
`
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "missing 'cards' section"},
		{"no cards", "other: 1\n", "missing 'cards' section"},
		{"cards list", "cards: [1, 2]\n", "'cards' must be a dictionary"},
		{"missing field", card("    display_name: C\n"), "card 'c1' is missing required field: year"},
		{"benefits not list", card(full + "    benefits: {}\n"), "card 'c1': benefits must be a list"},
		{"benefit missing id", card(full + "    benefits:\n      - category: X\n"), "card 'c1', benefit 0: missing required field 'id'"},
		{"bad frequency", card(full + "    benefits:\n      - {id: a, category: X, amount: 1, frequency: weekly, renewal_type: calendar_year}\n"), "unknown frequency"},
		{"bad renewal type", card(full + "    benefits:\n      - {id: a, category: X, amount: 1, frequency: monthly, renewal_type: fiscal}\n"), "unknown renewal_type"},
		{"bad month", "cards:\n  c1:\n    display_name: C\n    year: 2025\n    annual_fee: 1\n    renewal_month: 13\n    renewal_day: 1\n    benefits: []\n", "renewal_month must be 1-12"},
		{"bad day", "cards:\n  c1:\n    display_name: C\n    year: 2025\n    annual_fee: 1\n    renewal_month: 4\n    renewal_day: 31\n    benefits: []\n", "renewal_day 31 is not valid for month 4"},
		{"yaml error", "cards: [\n", "YAML parsing error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBenefits([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err, tt.want)
			}
		})
	}

	if err := ValidateBenefits([]byte(validBenefits)); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestLoadBenefits(t *testing.T) {
	dir := t.TempDir()

	bc, err := LoadBenefits(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if bc.Len() != 0 {
		t.Errorf("missing file gave %d cards", bc.Len())
	}

	path := filepath.Join(dir, "benefits.yaml")
	if err := os.WriteFile(path, []byte(validBenefits), 0o600); err != nil {
		t.Fatal(err)
	}
	bc, err = LoadBenefits(path)
	if err != nil {
		t.Fatal(err)
	}
	if bc.Len() != 2 {
		t.Errorf("cards = %d, want 2", bc.Len())
	}
}

func TestNilBenefitsConfig(t *testing.T) {
	var bc *BenefitsConfig
	if bc.Len() != 0 || bc.Keys() != nil {
		t.Error("nil config not empty")
	}
	if _, ok := bc.Card("x"); ok {
		t.Error("nil config found a card")
	}
}
