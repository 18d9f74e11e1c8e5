package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
)

// Rules bundles the tier rules for both cards and the statement close day.
type Rules struct {
	Personal config.TierRules
	Business config.TierRules
	CloseDay int
}

// DefaultRules returns the built-in card rules.
func DefaultRules() Rules {
	return Rules{
		Personal: config.DefaultPersonalRules(),
		Business: config.DefaultBusinessRules(),
		CloseDay: 23,
	}
}

// RulesFrom resolves card rules with any overrides from cfg.
func RulesFrom(cfg config.Config) Rules {
	return Rules{
		Personal: config.PersonalRules(cfg),
		Business: config.BusinessRules(cfg),
		CloseDay: config.StatementCloseDay(cfg),
	}
}

// For returns the tier rules for a card kind.
func (r Rules) For(kind model.CardKind) config.TierRules {
	if kind == model.Business {
		return r.Business
	}
	return r.Personal
}

// Tier returns trunc(amount / step).
func Tier(amount, step decimal.Decimal) int {
	if step.IsZero() {
		return 0
	}
	q, _ := amount.QuoRem(step, 0)
	return int(q.IntPart())
}

// PersonalBonus returns the bonus-night event for moving the lifetime
// running total from prev to cum on the personal card.
func PersonalBonus(cum, prev decimal.Decimal) int {
	return personalNights(config.DefaultPersonalRules(), cum, prev)
}

// BusinessBonus returns the bonus-night event for moving the calendar-year
// running total from prevYear to cumYear on the business card.
func BusinessBonus(cumYear, prevYear decimal.Decimal) int {
	return businessNights(config.DefaultBusinessRules(), cumYear, prevYear)
}

func personalNights(r config.TierRules, cum, prev decimal.Decimal) int {
	cur, before := Tier(cum, r.Step), Tier(prev, r.Step)
	switch {
	case cur > before && cur > 0:
		if cur-before == 1 {
			return r.NightsPerTier
		}
		return min(r.NightsPerTier*cur, r.MaxNights)
	case cur < before && cur > 0:
		return -min(r.NightsPerTier*before, r.MaxNights)
	}
	return 0
}

func businessNights(r config.TierRules, cumYear, prevYear decimal.Decimal) int {
	cur, before := Tier(cumYear, r.Step), Tier(prevYear, r.Step)
	switch {
	case cur > before && cur > 0:
		return min(r.NightsPerTier*cur, r.MaxNights)
	case cur < before && cur > 0:
		return -min(r.NightsPerTier*before, r.MaxNights)
	}
	return 0
}

// IsSpend reports whether a transaction type counts toward bonus spend.
func IsSpend(typ string) bool {
	return typ != "Payment" && typ != "Fee"
}

// Process turns raw transactions into an annotated ledger. Rows are
// stable-sorted by transaction date, payments and fees are dropped, and
// each remaining row carries its running totals and bonus-night event.
func Process(kind model.CardKind, txns []model.Transaction, rules Rules) model.Ledger {
	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TransactionDate.Before(sorted[j].TransactionDate)
	})

	tr := rules.For(kind)
	ledger := model.Ledger{Kind: kind}
	var cum decimal.Decimal
	yearCum := make(map[int]decimal.Decimal)

	for _, t := range sorted {
		if !IsSpend(t.Type) {
			continue
		}
		e := model.LedgerEntry{
			Transaction: t,
			Spend:       t.Amount.Neg(),
			Year:        t.PostDate.Year(),
		}

		e.PrevCumulative = cum
		cum = cum.Add(e.Spend)
		e.Cumulative = cum

		e.PrevYearCumulative = yearCum[e.Year]
		e.YearCumulative = e.PrevYearCumulative.Add(e.Spend)
		yearCum[e.Year] = e.YearCumulative

		if kind == model.Business {
			e.Nights = businessNights(tr, e.YearCumulative, e.PrevYearCumulative)
		} else {
			e.Nights = personalNights(tr, e.Cumulative, e.PrevCumulative)
		}
		ledger.Entries = append(ledger.Entries, e)
	}
	return ledger
}
