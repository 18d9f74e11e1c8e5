package benefits

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
)

// renewalDate returns the card's renewal date in year. A Feb 29 renewal
// falls on Feb 28 in common years.
func renewalDate(card config.CardConfig, year int) time.Time {
	m, d := card.RenewalMonth, card.RenewalDay
	if m < 1 || m > 12 {
		m = 1
	}
	if d < 1 {
		d = 1
	}
	last := model.Date(year, time.Month(m), 1).AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return model.Date(year, time.Month(m), d)
}

// AnniversaryMonth returns the renewal month of a card, defaulting to January.
func (c *Calculator) AnniversaryMonth(cardKey string) (int, bool) {
	card, ok := c.cfg.Card(cardKey)
	if !ok {
		return 0, false
	}
	if card.RenewalMonth == 0 {
		return 1, true
	}
	return card.RenewalMonth, true
}

// AnniversaryRange returns the first and last day of the anniversary year
// that starts on the card's renewal date in year.
func (c *Calculator) AnniversaryRange(cardKey string, year int) (start, end time.Time, ok bool) {
	card, ok := c.cfg.Card(cardKey)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start = renewalDate(card, year)
	return start, start.AddDate(0, 0, 364), true
}

// AnniversaryYearOf returns the anniversary year a posted benefit's post
// date falls in.
func (c *Calculator) AnniversaryYearOf(cardKey string, b model.Benefit) (int, bool) {
	if !b.Posted || b.PostDate == nil {
		return 0, false
	}
	card, ok := c.cfg.Card(cardKey)
	if !ok {
		return 0, false
	}
	pd := model.Day(*b.PostDate)
	if pd.Before(renewalDate(card, pd.Year())) {
		return pd.Year() - 1, true
	}
	return pd.Year(), true
}

// CalendarPeriodOverlapsAnniversary reports whether a calendar period
// shares any day with the card's anniversary year.
func (c *Calculator) CalendarPeriodOverlapsAnniversary(cardKey, period string, year int) bool {
	ps, pe, ok := CalendarPeriodRange(period)
	if !ok {
		return false
	}
	as, ae, ok := c.AnniversaryRange(cardKey, year)
	if !ok {
		return false
	}
	return !ps.After(ae) && !pe.Before(as)
}

// PostedCalendarAnniversaryYear finds the anniversary year, within two
// years of today, whose range contains a posted benefit's post date.
func (c *Calculator) PostedCalendarAnniversaryYear(cardKey string, b model.Benefit) (int, bool) {
	if !b.Posted || b.PostDate == nil {
		return 0, false
	}
	pd := model.Day(*b.PostDate)
	ty := c.Today().Year()
	for y := ty - 2; y <= ty+2; y++ {
		as, ae, ok := c.AnniversaryRange(cardKey, y)
		if ok && !pd.Before(as) && !pd.After(ae) {
			return y, true
		}
	}
	return 0, false
}

// Availability describes whether an every-4-years benefit can be used.
type Availability struct {
	Available     bool
	LastUsedYear  int
	NextAvailable int
	Reason        string
}

// Every4YearsAvailability checks a benefit against its most recent posted
// period. It is available again four anniversary years after last use.
func (c *Calculator) Every4YearsAvailability(benefitID, cardKey, period string) Availability {
	if _, ok := c.cfg.Card(cardKey); !ok {
		return Availability{Available: true}
	}
	periodYear, err := leadingYear(period)
	if err != nil {
		return Availability{Available: true}
	}

	prefix := benefitID + "|"
	last := 0
	c.mu.RLock()
	for key, st := range c.state {
		if !st.Posted || !strings.HasPrefix(key, prefix) {
			continue
		}
		y, err := leadingYear(strings.TrimPrefix(key, prefix))
		if err == nil && y > last {
			last = y
		}
	}
	c.mu.RUnlock()

	if last == 0 {
		return Availability{Available: true}
	}
	next := last + 4
	if periodYear >= next {
		return Availability{Available: true, LastUsedYear: last}
	}
	return Availability{
		LastUsedYear:  last,
		NextAvailable: next,
		Reason:        fmt.Sprintf("Used in %d, available again in %d", last, next),
	}
}

// Every4Info is Every4YearsAvailability for a benefit; other frequencies
// are always available.
func (c *Calculator) Every4Info(b model.Benefit) Availability {
	if b.Frequency != model.Every4Years {
		return Availability{Available: true}
	}
	return c.Every4YearsAvailability(b.BenefitID, b.CardKey, b.Period)
}

func leadingYear(period string) (int, error) {
	return strconv.Atoi(strings.SplitN(period, "-", 2)[0])
}
