package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/Dan9191/investment-advisor/internal/advice"
	"github.com/Dan9191/investment-advisor/internal/models"
)

// Basis selects the principal each instrument is projected against.
type Basis string

const (
	// BasisTotal projects every instrument against the whole investable amount.
	BasisTotal Basis = "total"
	// BasisShare projects every instrument against an even share of the investable amount.
	BasisShare Basis = "share"
)

// ParseBasis maps a config value to a Basis, defaulting to BasisTotal.
func ParseBasis(s string) Basis {
	if Basis(s) == BasisShare {
		return BasisShare
	}
	return BasisTotal
}

// Advice is the normalized input of the projection step, built either from the parsed
// advisory payload or from the fallback split.
type Advice struct {
	Source        models.PlanSource
	Basis         Basis
	EmergencyFund float64
	Investable    float64
	Rates         map[models.Instrument]float64
	Returns       map[models.Horizon]models.Estimate
}

// FallbackAdvice splits the allocator's investable amount evenly across the risk tier's
// instruments at the rate table's percentages.
func FallbackAdvice(risk models.RiskCategory, allocation models.AllocationPlan, rates models.RateTable, monthlyExpenses float64) Advice {
	adv := Advice{
		Source:        models.SourceFallback,
		Basis:         BasisShare,
		EmergencyFund: advice.EmergencyFundMonths * monthlyExpenses,
		Investable:    allocation.Investable,
		Rates:         make(map[models.Instrument]float64),
	}
	for _, opt := range risk.TierOptions() {
		adv.Rates[opt.Instrument] = rates[opt.Instrument]
	}
	return adv
}

// AdviceFromPayload maps the advisor's labels to instrument classes. It reports false when
// no label names a known instrument, in which case the caller falls back.
func AdviceFromPayload(p *advice.Payload, allocation models.AllocationPlan, monthlyExpenses float64, basis Basis) (Advice, []string, bool) {
	var warnings []string
	adv := Advice{
		Source:        models.SourceAdvice,
		Basis:         basis,
		EmergencyFund: p.EmergencyFund,
		Investable:    p.InvestableAmount,
		Rates:         make(map[models.Instrument]float64),
		Returns:       p.Returns,
	}
	if adv.Investable <= 0 {
		warnings = append(warnings, fmt.Sprintf("advised investable amount %.2f ignored, using %.2f", adv.Investable, allocation.Investable))
		adv.Investable = allocation.Investable
	}
	if adv.EmergencyFund < 0 {
		warnings = append(warnings, fmt.Sprintf("advised emergency fund %.2f ignored", adv.EmergencyFund))
		adv.EmergencyFund = advice.EmergencyFundMonths * monthlyExpenses
	}

	labels := make([]string, 0, len(p.Investments))
	for label := range p.Investments {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	counts := make(map[models.Instrument]int)
	for _, label := range labels {
		inst, ok := models.ParseInstrument(label)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown instrument %q dropped", label))
			continue
		}
		adv.Rates[inst] += p.Investments[label]
		counts[inst]++
	}
	for inst, n := range counts {
		if n > 1 {
			adv.Rates[inst] /= float64(n)
			warnings = append(warnings, fmt.Sprintf("%d labels map to %s, rates averaged", n, inst))
		}
	}

	return adv, warnings, len(adv.Rates) > 0
}

// ProjectAdvice computes the projected return of every advised instrument.
func ProjectAdvice(adv Advice) (map[models.Instrument]models.PlanEntry, []string) {
	var warnings []string
	entries := make(map[models.Instrument]models.PlanEntry, len(adv.Rates))
	if len(adv.Rates) == 0 {
		return entries, nil
	}

	principal := adv.Investable
	if adv.Basis == BasisShare {
		principal = round2(adv.Investable / float64(len(adv.Rates)))
	}

	for _, inst := range models.Instruments {
		rate, ok := adv.Rates[inst]
		if !ok {
			continue
		}
		proj := &models.ProjectedReturn{}
		failed := false
		for _, h := range models.Horizons {
			v, err := Project(principal, rate, int(h))
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("projection of %s: %v", inst, err))
				failed = true
				break
			}
			proj.Set(h, v)
		}
		if failed {
			continue
		}
		entries[inst] = models.PlanEntry{
			Amount:     models.Money(principal),
			Rate:       rate,
			Projection: proj,
		}
	}
	return entries, warnings
}

// TotalReturns sums the instrument projections per horizon.
func TotalReturns(entries map[models.Instrument]models.PlanEntry) map[models.Horizon]models.Estimate {
	totals := map[models.Horizon]float64{}
	for _, e := range entries {
		totals[1] += float64(e.Projection.OneYear)
		totals[3] += float64(e.Projection.ThreeYears)
		totals[5] += float64(e.Projection.FiveYears)
	}
	out := make(map[models.Horizon]models.Estimate, len(models.Horizons))
	for _, h := range models.Horizons {
		if math.IsInf(totals[h], 0) {
			out[h] = models.NotAvailable
			continue
		}
		out[h] = models.Estimate{Value: round2(totals[h]), Available: true}
	}
	return out
}

// Assemble builds the final plan. Every instrument class and budget category is present;
// instruments without a projection get a zero placeholder.
func Assemble(allocation models.AllocationPlan, projected map[models.Instrument]models.PlanEntry) models.InvestmentPlan {
	plan := make(models.InvestmentPlan, len(models.Instruments)+3)
	for _, inst := range models.Instruments {
		entry, ok := projected[inst]
		if !ok {
			entry = models.PlanEntry{Projection: &models.ProjectedReturn{}}
		}
		plan[inst.String()] = entry
	}

	plan[models.LabelNeeds] = budgetEntry(allocation.Needs)
	plan[models.LabelWants] = budgetEntry(allocation.Wants)
	plan[models.LabelInvestments] = budgetEntry(allocation.Investable)
	return plan
}

func budgetEntry(amount float64) models.PlanEntry {
	var zero models.Money
	return models.PlanEntry{Amount: models.Money(round2(amount)), Returns: &zero}
}
