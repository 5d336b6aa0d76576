package planner

import (
	"fmt"
	"math"

	"github.com/Dan9191/investment-advisor/internal/models"
)

// RecommendationPrincipal is the notional amount the recommendations are projected on.
const RecommendationPrincipal = 10000

// RecommendationInstruments are the instruments covered by the inflation-adjusted outlook.
var RecommendationInstruments = []models.Instrument{models.SIP, models.FixedDeposit, models.MutualFunds, models.Gold}

// Recommend adds each country's inflation to the base rate of every recommendation
// instrument and projects the principal over a flat ten-year horizon. A projection
// that cannot be computed renders as "N/A" and is reported in the warnings.
func Recommend(inflation models.InflationTable, base models.RateTable, principal float64) (models.Recommendations, []string) {
	out := make(models.Recommendations, len(models.Countries))
	var warnings []string
	for _, country := range models.Countries {
		byInstrument := make(map[models.Instrument]models.Recommendation, len(RecommendationInstruments))
		for _, inst := range RecommendationInstruments {
			rate := base[inst] + inflation[country]
			projected, err := Project(principal, rate, RecommendationYears)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s %s: %v", country, inst, err))
				projected = math.Inf(1)
			}
			byInstrument[inst] = models.Recommendation{Rate: rate, Projected: models.Money(projected)}
		}
		out[country] = byInstrument
	}
	return out, warnings
}
