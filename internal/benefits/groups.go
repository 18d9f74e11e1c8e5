package benefits

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/theirongolddev/cardperks/internal/model"
)

// CardGroup is every card-year config sharing a base card key.
type CardGroup struct {
	Base        string
	DisplayName string
	Years       map[int]string // anniversary year -> card key
}

// SortedYears returns the group's years, latest first.
func (g CardGroup) SortedYears() []int {
	years := make([]int, 0, len(g.Years))
	for y := range g.Years {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// GroupCards groups configured cards by base key, in config order.
func (c *Calculator) GroupCards() []CardGroup {
	idx := make(map[string]int)
	var groups []CardGroup
	for _, key := range c.cfg.Keys() {
		card, _ := c.cfg.Card(key)
		base := BaseKey(key)
		i, ok := idx[base]
		if !ok {
			i = len(groups)
			idx[base] = i
			groups = append(groups, CardGroup{Base: base, DisplayName: card.DisplayName, Years: map[int]string{}})
		}
		year := card.Year
		if year == 0 && base != key {
			year, _ = strconv.Atoi(key[len(base)+1:])
		}
		groups[i].Years[year] = key
	}
	return groups
}

// DefaultYear picks the anniversary year containing today, or the latest.
func (c *Calculator) DefaultYear(g CardGroup) int {
	years := g.SortedYears()
	if len(years) == 0 {
		return 0
	}
	today := c.Today()
	for _, y := range years {
		start, end, ok := c.AnniversaryRange(g.Years[y], y)
		if ok && !today.Before(start) && !today.After(end) {
			return y
		}
	}
	return years[0]
}

// ForYear returns a card's benefits belonging to an anniversary year,
// deduplicated by category and period. Anniversary benefits match on their
// period year; calendar benefits on overlap with the anniversary range.
func (c *Calculator) ForYear(cardKey string, year int) []model.Benefit {
	type key struct{ category, period string }
	seen := make(map[key]struct{})

	var out []model.Benefit
	for _, b := range c.CardBenefits(cardKey) {
		k := key{b.Category, b.Period}
		if _, dup := seen[k]; dup {
			continue
		}

		include := false
		if RenewalTypeOf(b.Period) == model.CardAnniversary {
			py, ok := PeriodAnniversaryYear(b.Period)
			include = ok && py == year
		} else {
			include = c.CalendarPeriodOverlapsAnniversary(b.CardKey, b.Period, year)
		}
		if include {
			out = append(out, b)
			seen[k] = struct{}{}
		}
	}
	return out
}

// Disabled reports whether a benefit cannot be toggled in the selected
// anniversary year, with a reason.
func (c *Calculator) Disabled(b model.Benefit, year int) (bool, string) {
	if b.Frequency == model.Every4Years {
		if a := c.Every4Info(b); !a.Available {
			return true, a.Reason
		}
	}
	if RenewalTypeOf(b.Period) == model.CalendarYear && b.Posted &&
		b.PostedAnniversaryYear != nil && *b.PostedAnniversaryYear != year {
		return true, fmt.Sprintf("Used in %d", *b.PostedAnniversaryYear)
	}
	return false, ""
}

// BulkMode selects which monthly benefits a bulk toggle touches.
type BulkMode string

const (
	AllOn     BulkMode = "all-on"
	AllOff    BulkMode = "all-off"
	PastOn    BulkMode = "past-on"
	FutureOff BulkMode = "future-off"
)

// ParseBulkMode validates a bulk mode name.
func ParseBulkMode(s string) (BulkMode, error) {
	switch m := BulkMode(s); m {
	case AllOn, AllOff, PastOn, FutureOff:
		return m, nil
	}
	return "", fmt.Errorf("unknown bulk mode %q (want all-on, all-off, past-on, future-off)", s)
}

// BulkMonthly posts or unposts every monthly benefit of a category in an
// anniversary year. Disabled benefits are skipped. It returns how many
// benefits changed.
func (c *Calculator) BulkMonthly(cardKey, category string, year int, mode BulkMode) (int, error) {
	if _, ok := c.cfg.Card(cardKey); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCard, cardKey)
	}
	target := mode == AllOn || mode == PastOn
	today := c.Today()

	var matched []model.Benefit
	for _, b := range c.ForYear(cardKey, year) {
		if b.Category == category {
			matched = append(matched, b)
		}
	}
	SortByPeriod(matched)

	changed := 0
	for _, b := range matched {
		if b.Frequency != model.Monthly {
			continue
		}
		if off, _ := c.Disabled(b, year); off {
			continue
		}
		if mode == PastOn || mode == FutureOff {
			start, _, ok := CalendarPeriodRange(b.Period)
			if !ok {
				continue
			}
			if mode == PastOn && start.After(today) {
				continue
			}
			if mode == FutureOff && !start.After(today) {
				continue
			}
		}
		if b.Posted == target {
			continue
		}

		annYear := 0
		if target && RenewalTypeOf(b.Period) == model.CalendarYear {
			annYear = year
		}
		if err := c.Toggle(b.BenefitID, b.Period, annYear); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// SortCategories orders groups with monthly benefits first, then by name.
func SortCategories(groups []CategoryGroup) {
	hasMonthly := func(g CategoryGroup) bool {
		for _, b := range g.Benefits {
			if b.Frequency == model.Monthly {
				return true
			}
		}
		return false
	}
	sort.SliceStable(groups, func(i, j int) bool {
		mi, mj := hasMonthly(groups[i]), hasMonthly(groups[j])
		if mi != mj {
			return mi
		}
		return groups[i].Category < groups[j].Category
	})
}

// MonthlyProgress totals a category's monthly benefits: value posted,
// value available, and the count of posted and distinct periods.
type MonthlyProgress struct {
	Posted, Total           float64
	PostedCount, TotalCount int
}

// Monthly summarises the monthly benefits in bs.
func Monthly(bs []model.Benefit) MonthlyProgress {
	var p MonthlyProgress
	periods := map[string]bool{}
	for _, b := range bs {
		if b.Frequency != model.Monthly {
			continue
		}
		p.Total += b.Value()
		if _, ok := periods[b.Period]; !ok {
			periods[b.Period] = false
		}
		if b.Posted {
			p.Posted += b.Value()
			periods[b.Period] = true
		}
	}
	for _, posted := range periods {
		p.TotalCount++
		if posted {
			p.PostedCount++
		}
	}
	return p
}
