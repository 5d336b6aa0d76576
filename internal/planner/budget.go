package planner

import (
	"fmt"
	"math"

	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/shopspring/decimal"
)

var (
	needsShare = decimal.NewFromFloat(0.50)
	wantsShare = decimal.NewFromFloat(0.30)
)

// Allocate splits a salary 50/30/20 into needs, wants and the investable amount.
// The investable amount is the remainder, so the three parts always add up to the salary.
func Allocate(salary float64) (models.AllocationPlan, error) {
	if math.IsNaN(salary) || math.IsInf(salary, 0) {
		return models.AllocationPlan{}, fmt.Errorf("%w: salary is not a number", models.ErrInvalidInput)
	}
	if salary < 0 {
		return models.AllocationPlan{}, fmt.Errorf("%w: salary must not be negative, got %.2f", models.ErrInvalidInput, salary)
	}

	s := decimal.NewFromFloat(salary)
	needs := s.Mul(needsShare)
	wants := s.Mul(wantsShare)
	investable := s.Sub(needs).Sub(wants)

	return models.AllocationPlan{
		Needs:      needs.InexactFloat64(),
		Wants:      wants.InexactFloat64(),
		Investable: investable.InexactFloat64(),
	}, nil
}
