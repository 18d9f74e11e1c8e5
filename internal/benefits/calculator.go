// Package benefits computes credit card benefit periods, their posted
// state, and the value realised against each card's annual fee.
package benefits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
)

var (
	// ErrUnknownCard is returned when a card key is not in the benefits config.
	ErrUnknownCard = errors.New("unknown card")
	// ErrCustomExceedsAmount is returned when a partial amount is larger than the benefit.
	ErrCustomExceedsAmount = errors.New("custom amount exceeds benefit amount")
)

// StateStore persists benefit state.
type StateStore interface {
	BenefitStates() (map[string]model.BenefitState, error)
	SaveBenefitState(benefitID, period string, st model.BenefitState) error
}

// Calculator joins the benefits config with persisted state.
type Calculator struct {
	cfg   *config.BenefitsConfig
	store StateStore
	now   func() time.Time

	mu    sync.RWMutex
	state map[string]model.BenefitState
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// New loads all benefit state from st.
func New(cfg *config.BenefitsConfig, st StateStore, opts ...Option) (*Calculator, error) {
	if cfg == nil {
		cfg = config.NewBenefitsConfig()
	}
	c := &Calculator{cfg: cfg, store: st, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads benefit state from the store.
func (c *Calculator) Reload() error {
	state, err := c.store.BenefitStates()
	if err != nil {
		return fmt.Errorf("loading benefit state: %w", err)
	}
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	return nil
}

// Config returns the benefits config.
func (c *Calculator) Config() *config.BenefitsConfig {
	return c.cfg
}

// Today returns the current date at midnight UTC.
func (c *Calculator) Today() time.Time {
	return model.Day(c.now())
}

// State returns the stored state of a benefit period. Missing state is
// not posted.
func (c *Calculator) State(benefitID, period string) model.BenefitState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state[model.StateKey(benefitID, period)]
}

func (c *Calculator) update(benefitID, period string, fn func(*model.BenefitState)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := model.StateKey(benefitID, period)
	st := c.state[key]
	fn(&st)
	if err := c.store.SaveBenefitState(benefitID, period, st); err != nil {
		return err
	}
	c.state[key] = st
	return nil
}

// Toggle flips a benefit's posted flag. Posting stamps today's date and,
// when anniversaryYear is non-zero, the anniversary year it was used in.
// Unposting clears both.
func (c *Calculator) Toggle(benefitID, period string, anniversaryYear int) error {
	today := c.Today()
	return c.update(benefitID, period, func(st *model.BenefitState) {
		st.Posted = !st.Posted
		if st.Posted {
			st.PostDate = &today
			if anniversaryYear != 0 {
				y := anniversaryYear
				st.PostedAnniversaryYear = &y
			}
			return
		}
		st.PostDate = nil
		st.PostedAnniversaryYear = nil
	})
}

// SetCustomAmount records a partial amount used. nil restores the full amount.
func (c *Calculator) SetCustomAmount(benefitID, period string, amount *float64) error {
	return c.update(benefitID, period, func(st *model.BenefitState) {
		if amount == nil {
			st.CustomAmount = nil
			return
		}
		v := *amount
		st.CustomAmount = &v
	})
}

// CustomAmount returns the recorded partial amount, or def when none is set.
func (c *Calculator) CustomAmount(benefitID, period string, def float64) float64 {
	st := c.State(benefitID, period)
	if st.CustomAmount != nil {
		return *st.CustomAmount
	}
	return def
}

// SetPosted sets the posted flag explicitly. postDate defaults to today.
// Unposting clears the post date and anniversary year.
func (c *Calculator) SetPosted(benefitID, period string, posted bool, postDate *time.Time) error {
	today := c.Today()
	return c.update(benefitID, period, func(st *model.BenefitState) {
		st.Posted = posted
		if !posted {
			st.PostDate = nil
			st.PostedAnniversaryYear = nil
			return
		}
		d := today
		if postDate != nil {
			d = model.Day(*postDate)
		}
		st.PostDate = &d
	})
}

// Post marks a benefit posted on postDate (default today). A non-zero
// anniversaryYear records the anniversary year it was used in.
func (c *Calculator) Post(benefitID, period string, postDate *time.Time, anniversaryYear int) error {
	today := c.Today()
	return c.update(benefitID, period, func(st *model.BenefitState) {
		st.Posted = true
		d := today
		if postDate != nil {
			d = model.Day(*postDate)
		}
		st.PostDate = &d
		st.PostedAnniversaryYear = nil
		if anniversaryYear != 0 {
			y := anniversaryYear
			st.PostedAnniversaryYear = &y
		}
	})
}

// BaseKey strips a trailing _YYYY from a card key.
func BaseKey(cardKey string) string {
	i := strings.LastIndex(cardKey, "_")
	if i < 0 || !isDigits(cardKey[i+1:]) {
		return cardKey
	}
	return cardKey[:i]
}

// BenefitID is the state identifier of a configured benefit. Calendar
// benefits share state across card years; anniversary ones do not.
func BenefitID(cardKey string, b config.BenefitConfig) string {
	if b.RenewalType == model.CardAnniversary {
		return cardKey + "_" + b.ID
	}
	return BaseKey(cardKey) + "_" + b.ID
}

// CardBenefits expands every benefit of a card into its periods, joined
// with stored state. An unknown card yields nil.
func (c *Calculator) CardBenefits(cardKey string) []model.Benefit {
	card, ok := c.cfg.Card(cardKey)
	if !ok {
		return nil
	}
	today := c.Today()

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Benefit
	for _, bc := range card.Benefits {
		id := BenefitID(cardKey, bc)
		for _, period := range Periods(bc, card, today) {
			st := c.state[model.StateKey(id, period)]
			out = append(out, model.Benefit{
				BenefitID:             id,
				Category:              bc.Category,
				Amount:                bc.Amount,
				Frequency:             bc.Frequency,
				Period:                period,
				Posted:                st.Posted,
				PostDate:              st.PostDate,
				CustomAmount:          st.CustomAmount,
				PostedAnniversaryYear: st.PostedAnniversaryYear,
				CardKey:               cardKey,
				CardName:              card.DisplayName,
			})
		}
	}
	return out
}

// AllBenefits returns the benefits of every card in config order.
func (c *Calculator) AllBenefits() []model.Benefit {
	var out []model.Benefit
	for _, k := range c.cfg.Keys() {
		out = append(out, c.CardBenefits(k)...)
	}
	return out
}

// CategoryGroup is the benefits of one category.
type CategoryGroup struct {
	Category string
	Benefits []model.Benefit
}

// BenefitsByCategory groups benefits by category in first-seen order.
// An empty cardKey groups every card's benefits.
func (c *Calculator) BenefitsByCategory(cardKey string) []CategoryGroup {
	bs := c.AllBenefits()
	if cardKey != "" {
		bs = c.CardBenefits(cardKey)
	}
	return GroupByCategory(bs)
}

// GroupByCategory groups benefits by category in first-seen order.
func GroupByCategory(bs []model.Benefit) []CategoryGroup {
	idx := make(map[string]int)
	var groups []CategoryGroup
	for _, b := range bs {
		i, ok := idx[b.Category]
		if !ok {
			i = len(groups)
			idx[b.Category] = i
			groups = append(groups, CategoryGroup{Category: b.Category})
		}
		groups[i].Benefits = append(groups[i].Benefits, b)
	}
	return groups
}

// CardSummary totals the current calendar year's benefits of a card.
func (c *Calculator) CardSummary(cardKey string) (model.CardSummary, bool) {
	card, ok := c.cfg.Card(cardKey)
	if !ok {
		return model.CardSummary{}, false
	}
	year := strconv.Itoa(c.Today().Year())

	s := model.CardSummary{CardKey: cardKey, CardName: card.DisplayName, AnnualFee: card.AnnualFee}
	for _, b := range c.CardBenefits(cardKey) {
		if !strings.Contains(b.Period, year) {
			continue
		}
		s.TotalPotential += b.Amount
		if b.Posted {
			s.TotalPosted += b.Value()
		}
	}
	s.NetValuePosted = s.TotalPosted - s.AnnualFee
	s.NetValuePotential = s.TotalPotential - s.AnnualFee
	s.ROIPosted = ROI(s.NetValuePosted, s.AnnualFee)
	s.ROIPotential = ROI(s.NetValuePotential, s.AnnualFee)
	return s, true
}

// AllCardsSummary summarises every configured card.
func (c *Calculator) AllCardsSummary() []model.CardSummary {
	var out []model.CardSummary
	for _, k := range c.cfg.Keys() {
		if s, ok := c.CardSummary(k); ok {
			out = append(out, s)
		}
	}
	return out
}

// ROI is net value as a percentage of the fee; 0 when there is no fee.
func ROI(net, fee float64) float64 {
	if fee <= 0 {
		return 0
	}
	return net / fee * 100
}

// FindBenefit looks up one benefit period of a card. id may be the
// configured benefit id or the full state identifier.
func (c *Calculator) FindBenefit(cardKey, id, period string) (model.Benefit, error) {
	card, ok := c.cfg.Card(cardKey)
	if !ok {
		return model.Benefit{}, fmt.Errorf("%w: %s", ErrUnknownCard, cardKey)
	}
	want := ""
	for _, bc := range card.Benefits {
		if bc.ID == id || BenefitID(cardKey, bc) == id {
			want = BenefitID(cardKey, bc)
			break
		}
	}
	for _, b := range c.CardBenefits(cardKey) {
		if b.BenefitID == want && b.Period == period {
			return b, nil
		}
	}
	return model.Benefit{}, fmt.Errorf("no benefit %q for period %q on %s", id, period, cardKey)
}

// SetCustomAmountChecked validates amount against the benefit before saving.
func (c *Calculator) SetCustomAmountChecked(b model.Benefit, amount *float64) error {
	if amount != nil && *amount > b.Amount {
		return fmt.Errorf("%w: %.2f > %.2f", ErrCustomExceedsAmount, *amount, b.Amount)
	}
	if amount != nil && *amount <= 0 {
		amount = nil
	}
	return c.SetCustomAmount(b.BenefitID, b.Period, amount)
}
