package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/Dan9191/investment-advisor/internal/models"
)

func TestAllocateSplit(t *testing.T) {
	got, err := Allocate(50000)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got.Needs != 25000 || got.Wants != 15000 || got.Investable != 10000 {
		t.Fatalf("unexpected allocation %+v", got)
	}
}

func TestAllocateSumsToSalary(t *testing.T) {
	for _, salary := range []float64{0, 0.01, 1, 333.33, 12345.67, 50000, 99999.99, 1e9 + 0.07} {
		a, err := Allocate(salary)
		if err != nil {
			t.Fatalf("Allocate(%v): %v", salary, err)
		}
		if sum := a.Needs + a.Wants + a.Investable; math.Abs(sum-salary) > 1e-6 {
			t.Errorf("Allocate(%v) sums to %v", salary, sum)
		}
		if a.Needs < 0 || a.Wants < 0 || a.Investable < 0 {
			t.Errorf("Allocate(%v) produced a negative part: %+v", salary, a)
		}
	}
}

func TestAllocateRejectsInvalidSalary(t *testing.T) {
	for _, salary := range []float64{-100, math.NaN(), math.Inf(1)} {
		if _, err := Allocate(salary); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Allocate(%v): expected ErrInvalidInput, got %v", salary, err)
		}
	}
}
