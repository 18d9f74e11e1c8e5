// Package summary combines card bonus nights, stays and benefit state into
// the figures shown by the CLI, TUI and daemon.
package summary

import (
	"sort"
	"sync"
	"time"

	"github.com/theirongolddev/cardperks/internal/benefits"
	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/pipeline"
	"github.com/theirongolddev/cardperks/internal/stays"
)

// Elite status thresholds in qualifying nights.
const (
	ExploristNights = 30
	GlobalistNights = 60
)

// Settings tune the nights summary.
type Settings struct {
	YearStart int // nights credited by the card each January
	EliteGoal int
	Rules     pipeline.Rules
}

// SettingsFrom resolves Settings from the app config.
func SettingsFrom(cfg config.Config) Settings {
	return Settings{
		YearStart: cfg.General.YearStartNights,
		EliteGoal: cfg.General.EliteGoal,
		Rules:     pipeline.RulesFrom(cfg),
	}
}

// StayCounter splits stay and guest-of-honor nights at a date.
type StayCounter interface {
	Count(ref time.Time) stays.Totals
}

// Service aggregates the card ledgers, benefits and stays.
type Service struct {
	settings Settings
	calc     *benefits.Calculator
	stays    StayCounter

	mu       sync.RWMutex
	personal model.Ledger
	business model.Ledger
}

// New creates a Service. calc and st may be nil.
func New(settings Settings, calc *benefits.Calculator, st StayCounter) *Service {
	return &Service{
		settings: settings,
		calc:     calc,
		stays:    st,
		personal: model.Ledger{Kind: model.Personal},
		business: model.Ledger{Kind: model.Business},
	}
}

// SetLedgers replaces the processed card ledgers.
func (s *Service) SetLedgers(personal, business model.Ledger) {
	s.mu.Lock()
	s.personal, s.business = personal, business
	s.mu.Unlock()
}

// Ledger returns the processed ledger of a card.
func (s *Service) Ledger(kind model.CardKind) model.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if kind == model.Business {
		return s.business
	}
	return s.personal
}

// Settings returns the service settings.
func (s *Service) Settings() Settings {
	return s.settings
}

// Calculator returns the benefits calculator, or nil.
func (s *Service) Calculator() *benefits.Calculator {
	return s.calc
}

// Breakdown returns ref's calendar-year bonus nights of a card.
func (s *Service) Breakdown(kind model.CardKind, ref time.Time) model.NightsBreakdown {
	return pipeline.YearlyBreakdown(s.Ledger(kind), ref, s.settings.Rules.CloseDay)
}

// Spending returns the spend progress of a card at ref.
func (s *Service) Spending(kind model.CardKind, ref time.Time) model.SpendingSummary {
	return pipeline.SpendingSummary(s.Ledger(kind), ref, s.settings.Rules)
}

// NightsSummary totals elite nights from every source at ref.
func (s *Service) NightsSummary(ref time.Time) model.NightsSummary {
	personal := s.Breakdown(model.Personal, ref)
	business := s.Breakdown(model.Business, ref)

	var t stays.Totals
	if s.stays != nil {
		t = s.stays.Count(ref)
	}

	ns := model.NightsSummary{
		YearlyStart:       s.settings.YearStart,
		CCNightsPosted:    personal.Posted + business.Posted,
		CCNightsPending:   personal.Pending + business.Pending,
		CurrentNights:     t.StayCurrent,
		UpcomingNights:    t.StayUpcoming,
		GOHNights:         t.GOHCurrent,
		GOHNightsUpcoming: t.GOHUpcoming,
	}
	ns.NightsPosted = ns.YearlyStart + ns.CurrentNights + ns.GOHNights + ns.CCNightsPosted
	ns.NightsTotal = ns.YearlyStart + ns.CurrentNights + ns.GOHNights + ns.GOHNightsUpcoming +
		personal.Total + business.Total + ns.UpcomingNights
	return ns
}

// Milestones reports the nights still needed for each elite level and the
// configured goal, ordered by threshold.
func (s *Service) Milestones(ns model.NightsSummary) []model.EliteMilestone {
	levels := map[int]string{ExploristNights: "Explorist", GlobalistNights: "Globalist"}
	if g := s.settings.EliteGoal; g > 0 {
		if _, ok := levels[g]; !ok {
			levels[g] = "Goal"
		}
	}
	thresholds := make([]int, 0, len(levels))
	for n := range levels {
		thresholds = append(thresholds, n)
	}
	sort.Ints(thresholds)

	out := make([]model.EliteMilestone, 0, len(thresholds))
	for _, n := range thresholds {
		out = append(out, model.EliteMilestone{
			Name:          levels[n],
			Nights:        n,
			NeededPosted:  max(0, n-ns.NightsPosted),
			NeededTotal:   max(0, n-ns.NightsTotal),
			ReachedPosted: ns.NightsPosted >= n,
		})
	}
	return out
}

// BenefitsForYear returns a card's benefits for one anniversary year.
func (s *Service) BenefitsForYear(cardKey string, year int) []model.Benefit {
	if s.calc == nil {
		return nil
	}
	return s.calc.ForYear(cardKey, year)
}

// YearSummary values benefits already filtered to an anniversary year.
// Calendar benefits posted in another anniversary year count toward neither
// total; an every-4-years benefit counts as potential only while available.
func (s *Service) YearSummary(bs []model.Benefit, annualFee float64, year int) model.YearSummary {
	var ys model.YearSummary
	for _, b := range bs {
		usedThisYear := b.PostedAnniversaryYear != nil && *b.PostedAnniversaryYear == year

		if benefits.RenewalTypeOf(b.Period) == model.CardAnniversary {
			if b.Frequency != model.Every4Years || s.every4Available(b) {
				ys.TotalPotential += b.Amount
			}
			if b.Posted {
				ys.TotalPosted += b.Value()
			}
			continue
		}

		if !b.Posted || usedThisYear {
			ys.TotalPotential += b.Amount
		}
		if b.Posted && usedThisYear {
			ys.TotalPosted += b.Value()
		}
	}
	ys.NetValuePosted = ys.TotalPosted - annualFee
	ys.ROIPosted = benefits.ROI(ys.NetValuePosted, annualFee)
	return ys
}

func (s *Service) every4Available(b model.Benefit) bool {
	if s.calc == nil {
		return true
	}
	return s.calc.Every4Info(b).Available
}
