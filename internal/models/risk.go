package models

import (
	"fmt"
	"strings"
)

// RiskCategory is the risk tolerance tier of a user.
type RiskCategory string

const (
	RiskLow    RiskCategory = "Low"
	RiskMedium RiskCategory = "Medium"
	RiskHigh   RiskCategory = "High"
)

// TierOption is an instrument eligible for a risk tier. Label is how the tier names it,
// which can be more specific than the instrument class (Balanced Mutual Funds -> MutualFunds).
type TierOption struct {
	Label      string
	Instrument Instrument
}

var riskTiers = map[RiskCategory][]TierOption{
	RiskLow: {
		{"Fixed Deposit", FixedDeposit},
		{"Mutual Funds", MutualFunds},
		{"Gold", Gold},
	},
	RiskMedium: {
		{"SIP", SIP},
		{"Balanced Mutual Funds", MutualFunds},
		{"REITs", REITs},
		{"Gold", Gold},
	},
	RiskHigh: {
		{"Stocks", Stocks},
		{"Crypto", Crypto},
		{"Gold", Gold},
		{"REITs", REITs},
		{"Aggressive Mutual Funds", AggressiveMutualFunds},
	},
}

// ParseRiskCategory accepts Low/Medium/High in any case.
func ParseRiskCategory(s string) (RiskCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "medium", "moderate":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	}
	return "", fmt.Errorf("%w: unknown risk category %q", ErrInvalidInput, s)
}

// Valid reports whether r is one of the closed set of tiers.
func (r RiskCategory) Valid() bool {
	_, ok := riskTiers[r]
	return ok
}

// TierOptions returns the instruments eligible for the risk tier.
func (r RiskCategory) TierOptions() []TierOption {
	opts := riskTiers[r]
	out := make([]TierOption, len(opts))
	copy(out, opts)
	return out
}
