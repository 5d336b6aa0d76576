package planner

import (
	"fmt"
	"math"

	"github.com/Dan9191/investment-advisor/internal/advice"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/shopspring/decimal"
)

// RecommendationYears is the flat horizon of the inflation-adjusted recommendations.
const RecommendationYears = 10

var projectionYears = map[int]bool{1: true, 3: true, 5: true, RecommendationYears: true}

// Project compounds principal at ratePct percent a year and rounds to 2 decimals.
// Negative rates are allowed.
func Project(principal, ratePct float64, years int) (float64, error) {
	if math.IsNaN(principal) || math.IsInf(principal, 0) {
		return 0, fmt.Errorf("%w: principal is not a number", models.ErrInvalidInput)
	}
	if principal < 0 {
		return 0, fmt.Errorf("%w: principal must not be negative, got %.2f", models.ErrInvalidInput, principal)
	}
	if math.IsNaN(ratePct) || math.IsInf(ratePct, 0) {
		return 0, fmt.Errorf("%w: rate is not a number", models.ErrInvalidInput)
	}
	if !projectionYears[years] {
		return 0, fmt.Errorf("%w: unsupported horizon of %d years", models.ErrInvalidInput, years)
	}
	v := principal * math.Pow(1+ratePct/100, float64(years))
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %.2f at %g%% over %d years overflows", models.ErrInvalidInput, principal, ratePct, years)
	}
	return round2(v), nil
}

// ProjectText is Project for a principal that arrives as formatted text ("₹10,000").
func ProjectText(principal string, ratePct float64, years int) (float64, error) {
	p, err := advice.Normalize(principal)
	if err != nil {
		return 0, fmt.Errorf("%w: principal: %v", models.ErrInvalidInput, err)
	}
	return Project(p, ratePct, years)
}

// round2 leaves non-finite values untouched; decimal cannot represent them.
func round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
