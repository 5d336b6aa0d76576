package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "₹"

// Budget category labels of the investment plan.
const (
	LabelNeeds       = "Needs"
	LabelWants       = "Wants"
	LabelInvestments = "Investments"
)

// Money is a currency amount. It is serialized as a formatted string ("₹3333.33").
type Money float64

// String formats the amount with two decimals and the currency symbol. Non-finite
// amounts render as "N/A".
func (m Money) String() string {
	if math.IsInf(float64(m), 0) || math.IsNaN(float64(m)) {
		return "N/A"
	}
	return CurrencySymbol + decimal.NewFromFloat(float64(m)).StringFixed(2)
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Horizon is a projection window in years.
type Horizon int

// Horizons are the projection windows of an investment plan.
var Horizons = []Horizon{1, 3, 5}

// Key is the wire name of the horizon ("1_year", "3_years").
func (h Horizon) Key() string {
	if h == 1 {
		return "1_year"
	}
	return fmt.Sprintf("%d_years", int(h))
}

// MarshalText implements encoding.TextMarshaler.
func (h Horizon) MarshalText() ([]byte, error) {
	return []byte(h.Key()), nil
}

// Estimate is a value that may be unavailable. Unavailable estimates render as "N/A".
// Percent estimates keep the unit they were quoted in ("12.00%") instead of currency.
type Estimate struct {
	Value     float64
	Available bool
	Percent   bool
}

// NotAvailable is the sentinel for a missing estimate.
var NotAvailable = Estimate{}

// String implements fmt.Stringer.
func (e Estimate) String() string {
	if !e.Available {
		return "N/A"
	}
	if e.Percent {
		if math.IsInf(e.Value, 0) || math.IsNaN(e.Value) {
			return "N/A"
		}
		return decimal.NewFromFloat(e.Value).StringFixed(2) + "%"
	}
	return Money(e.Value).String()
}

// MarshalJSON implements json.Marshaler.
func (e Estimate) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// AllocationPlan is the needs/wants/investable split of a salary.
type AllocationPlan struct {
	Needs      float64 `json:"needs"`
	Wants      float64 `json:"wants"`
	Investable float64 `json:"investable"`
}

// ProjectedReturn is the compounded value of one instrument at every horizon.
type ProjectedReturn struct {
	OneYear    Money `json:"1_year"`
	ThreeYears Money `json:"3_years"`
	FiveYears  Money `json:"5_years"`
}

// Set stores the value for the given horizon.
func (p *ProjectedReturn) Set(h Horizon, v float64) {
	switch h {
	case 1:
		p.OneYear = Money(v)
	case 3:
		p.ThreeYears = Money(v)
	case 5:
		p.FiveYears = Money(v)
	}
}

// PlanEntry is one line of the investment plan. Budget categories carry a flat Returns value,
// instruments carry a Projection.
type PlanEntry struct {
	Amount     Money            `json:"amount"`
	Rate       float64          `json:"rate"`
	Returns    *Money           `json:"returns,omitempty"`
	Projection *ProjectedReturn `json:"projection,omitempty"`
}

// InvestmentPlan maps a display label to its plan entry.
type InvestmentPlan map[string]PlanEntry

// PlanLabels returns every key an investment plan must contain.
func PlanLabels() []string {
	labels := make([]string, 0, len(Instruments)+3)
	for _, inst := range Instruments {
		labels = append(labels, inst.String())
	}
	return append(labels, LabelNeeds, LabelWants, LabelInvestments)
}

// PlanSource tells whether the plan was built from parsed advice or the fallback split.
type PlanSource string

const (
	SourceAdvice   PlanSource = "advice"
	SourceFallback PlanSource = "fallback"
)

// Stage is a step of the advisory pipeline.
type Stage string

const (
	StageStart            Stage = "Start"
	StageRatesFetched     Stage = "RatesFetched"
	StageInflationFetched Stage = "InflationFetched"
	StageAllocated        Stage = "Allocated"
	StageAdviceRequested  Stage = "AdviceRequested"
	StageAdviceParsed     Stage = "AdviceParsed"
	StageAdviceFallback   Stage = "AdviceFallback"
	StageProjected        Stage = "Projected"
	StageAssembled        Stage = "Assembled"
	StageDone             Stage = "Done"
)

// Plan is the complete result of one advisory computation.
type Plan struct {
	ID               string               `json:"id"`
	Risk             RiskCategory         `json:"risk"`
	Source           PlanSource           `json:"source"`
	Allocation       AllocationPlan       `json:"allocation"`
	EmergencyFund    Money                `json:"emergency_fund"`
	InvestableAmount Money                `json:"investable_amount"`
	Entries          InvestmentPlan       `json:"investments"`
	Returns          map[Horizon]Estimate `json:"returns"`
	Rates            RateTable            `json:"rates"`
	Inflation        InflationTable       `json:"inflation"`
	Warnings         []string             `json:"warnings,omitempty"`
	Stages           []Stage              `json:"stages"`
	CreatedAt        time.Time            `json:"created_at"`
}

// Recommendation is the inflation-adjusted outlook of one instrument in one country.
type Recommendation struct {
	Rate      float64 `json:"rate"`
	Projected Money   `json:"projected"`
}

// Recommendations maps country -> instrument -> outlook.
type Recommendations map[string]map[Instrument]Recommendation

// StoredPlan is a plan as kept in the user's history.
type StoredPlan struct {
	ID        string          `json:"id"`
	Risk      RiskCategory    `json:"risk"`
	Source    PlanSource      `json:"source"`
	Plan      json.RawMessage `json:"plan"`
	CreatedAt time.Time       `json:"created_at"`
}
