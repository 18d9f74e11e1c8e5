package summary

import (
	"time"

	"github.com/theirongolddev/cardperks/internal/model"
)

// CardReport is one card-year's benefit value for its current anniversary year.
type CardReport struct {
	CardKey string            `json:"card_key"`
	Name    string            `json:"name"`
	Year    int               `json:"year"`
	Fee     float64           `json:"annual_fee"`
	Summary model.YearSummary `json:"summary"`
}

// Report is a point-in-time view of everything the tool tracks.
type Report struct {
	GeneratedAt time.Time                                `json:"generated_at"`
	Nights      model.NightsSummary                      `json:"nights"`
	Milestones  []model.EliteMilestone                   `json:"milestones"`
	Breakdown   map[model.CardKind]model.NightsBreakdown `json:"breakdown"`
	Spending    map[model.CardKind]model.SpendingSummary `json:"spending"`
	Cards       []CardReport                             `json:"cards"`
}

// Report builds a Report at ref.
func (s *Service) Report(ref time.Time) Report {
	ns := s.NightsSummary(ref)
	r := Report{
		GeneratedAt: ref,
		Nights:      ns,
		Milestones:  s.Milestones(ns),
		Breakdown:   make(map[model.CardKind]model.NightsBreakdown, len(model.Kinds)),
		Spending:    make(map[model.CardKind]model.SpendingSummary, len(model.Kinds)),
	}
	for _, k := range model.Kinds {
		r.Breakdown[k] = s.Breakdown(k, ref)
		r.Spending[k] = s.Spending(k, ref)
	}
	r.Cards = s.CardReports()
	return r
}

// CardReports values every card group in its default anniversary year.
func (s *Service) CardReports() []CardReport {
	if s.calc == nil {
		return nil
	}
	var out []CardReport
	for _, g := range s.calc.GroupCards() {
		year := s.calc.DefaultYear(g)
		key := g.Years[year]
		card, ok := s.calc.Config().Card(key)
		if !ok {
			continue
		}
		out = append(out, CardReport{
			CardKey: key,
			Name:    g.DisplayName,
			Year:    year,
			Fee:     card.AnnualFee,
			Summary: s.YearSummary(s.BenefitsForYear(key, year), card.AnnualFee, year),
		})
	}
	return out
}
