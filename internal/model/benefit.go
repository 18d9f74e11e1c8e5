package model

import "time"

// Frequency is how often a benefit resets.
type Frequency string

const (
	Monthly     Frequency = "monthly"
	Quarterly   Frequency = "quarterly"
	HalfYearly  Frequency = "half_yearly"
	Yearly      Frequency = "yearly"
	Every4Years Frequency = "every_4_years"
)

// RenewalType anchors benefit periods to the calendar or the card anniversary.
type RenewalType string

const (
	CalendarYear    RenewalType = "calendar_year"
	CardAnniversary RenewalType = "card_anniversary"
)

// BenefitState is the persisted user state for one benefit period.
type BenefitState struct {
	Posted                bool
	PostDate              *time.Time
	CustomAmount          *float64
	PostedAnniversaryYear *int
}

// Benefit is one benefit for one period, joined with its state.
type Benefit struct {
	BenefitID             string
	Category              string
	Amount                float64
	Frequency             Frequency
	Period                string
	Posted                bool
	PostDate              *time.Time
	CustomAmount          *float64
	PostedAnniversaryYear *int
	CardKey               string
	CardName              string
}

// Value is the custom amount when one is set, otherwise the full amount.
func (b Benefit) Value() float64 {
	if b.CustomAmount != nil && *b.CustomAmount > 0 {
		return *b.CustomAmount
	}
	return b.Amount
}

// StateKey is the storage key for this benefit period.
func (b Benefit) StateKey() string {
	return StateKey(b.BenefitID, b.Period)
}

// StateKey joins a benefit ID and period.
func StateKey(benefitID, period string) string {
	return benefitID + "|" + period
}
