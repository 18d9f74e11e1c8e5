package model

import "github.com/shopspring/decimal"

// SpendingSummary describes progress toward the next spend-based bonus.
type SpendingSummary struct {
	Kind    CardKind `json:"kind"`
	HasData bool     `json:"has_data"`

	TotalSpending decimal.Decimal `json:"total_spending"` // all-time, personal only
	YTDSpending   decimal.Decimal `json:"ytd_spending"`
	CurrentTier   int             `json:"current_tier"`

	SpendToNextBonus   decimal.Decimal `json:"spend_to_next_bonus"`
	SpendToCertificate decimal.Decimal `json:"spend_to_certificate"` // personal only
	CurrentThreshold   decimal.Decimal `json:"current_threshold"`
	NextThreshold      decimal.Decimal `json:"next_threshold"`
}

// NightsBreakdown splits the current year's bonus nights by statement.
type NightsBreakdown struct {
	Posted  int `json:"posted"`
	Pending int `json:"pending"`
	Total   int `json:"total"`
}

// NightsSummary aggregates elite nights from every source.
type NightsSummary struct {
	YearlyStart       int `json:"cc_yearly_start"`
	CCNightsPosted    int `json:"cc_nights_posted"`
	CCNightsPending   int `json:"cc_nights_pending"`
	CurrentNights     int `json:"current_nights"`
	UpcomingNights    int `json:"upcoming_nights"`
	GOHNights         int `json:"goh_nights"`
	GOHNightsUpcoming int `json:"goh_nights_upcoming"`
	NightsPosted      int `json:"nights_posted"`
	NightsTotal       int `json:"nights_total"`
}

// EliteMilestone is a status level and the nights still needed to reach it.
type EliteMilestone struct {
	Name          string `json:"name"`
	Nights        int    `json:"nights"`
	NeededPosted  int    `json:"needed_posted"`
	NeededTotal   int    `json:"needed_total"`
	ReachedPosted bool   `json:"reached_posted"`
}

// CardSummary is the value realised from a card against its annual fee.
type CardSummary struct {
	CardKey           string  `json:"card_key"`
	CardName          string  `json:"card_name"`
	AnnualFee         float64 `json:"annual_fee"`
	TotalPosted       float64 `json:"total_posted"`
	TotalPotential    float64 `json:"total_potential"`
	NetValuePosted    float64 `json:"net_value_posted"`
	NetValuePotential float64 `json:"net_value_potential"`
	ROIPosted         float64 `json:"roi_posted"`
	ROIPotential      float64 `json:"roi_potential"`
}

// YearSummary is the value of one anniversary year of a card.
type YearSummary struct {
	TotalPosted    float64 `json:"total_posted_year"`
	TotalPotential float64 `json:"total_potential_year"`
	NetValuePosted float64 `json:"net_value_posted_year"`
	ROIPosted      float64 `json:"roi_posted_year"`
}
