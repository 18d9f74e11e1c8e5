package config

import "github.com/shopspring/decimal"

// TierRules describes how spend converts into bonus nights on one card.
type TierRules struct {
	Step          decimal.Decimal // spend per tier
	NightsPerTier int
	MaxNights     int
	Certificate   decimal.Decimal // annual spend for a free-night certificate; zero disables
}

// RulesConfig allows user-defined overrides of the built-in tier rules.
type RulesConfig struct {
	StatementCloseDay int          `toml:"statement_close_day"`
	Personal          TierOverride `toml:"personal"`
	Business          TierOverride `toml:"business"`
}

// TierOverride holds optional per-card overrides.
type TierOverride struct {
	Step          *float64 `toml:"step,omitempty"`
	NightsPerTier *int     `toml:"nights_per_tier,omitempty"`
	MaxNights     *int     `toml:"max_nights,omitempty"`
	Certificate   *float64 `toml:"certificate,omitempty"`
}

// DefaultPersonalRules: 2 nights per $5,000 of lifetime spend, capped at 22,
// plus a certificate at $15,000 per calendar year.
func DefaultPersonalRules() TierRules {
	return TierRules{
		Step:          decimal.NewFromInt(5000),
		NightsPerTier: 2,
		MaxNights:     22,
		Certificate:   decimal.NewFromInt(15000),
	}
}

// DefaultBusinessRules: 5 nights per $10,000 spent in a calendar year, capped at 30.
func DefaultBusinessRules() TierRules {
	return TierRules{
		Step:          decimal.NewFromInt(10000),
		NightsPerTier: 5,
		MaxNights:     30,
	}
}

// Apply returns r with any non-nil override fields replacing the defaults.
func (o TierOverride) Apply(r TierRules) TierRules {
	if o.Step != nil && *o.Step > 0 {
		r.Step = decimal.NewFromFloat(*o.Step)
	}
	if o.NightsPerTier != nil && *o.NightsPerTier > 0 {
		r.NightsPerTier = *o.NightsPerTier
	}
	if o.MaxNights != nil && *o.MaxNights > 0 {
		r.MaxNights = *o.MaxNights
	}
	if o.Certificate != nil && *o.Certificate >= 0 {
		r.Certificate = decimal.NewFromFloat(*o.Certificate)
	}
	return r
}

// PersonalRules resolves the personal card rules from cfg.
func PersonalRules(cfg Config) TierRules {
	return cfg.Rules.Personal.Apply(DefaultPersonalRules())
}

// BusinessRules resolves the business card rules from cfg.
func BusinessRules(cfg Config) TierRules {
	return cfg.Rules.Business.Apply(DefaultBusinessRules())
}

// StatementCloseDay returns the configured close day, clamped to 1..28.
func StatementCloseDay(cfg Config) int {
	d := cfg.Rules.StatementCloseDay
	if d < 1 || d > 28 {
		return 23
	}
	return d
}
