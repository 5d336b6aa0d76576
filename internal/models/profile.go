package models

import (
	"fmt"
	"math"
	"time"
)

// Expense is one named component of the monthly expenses.
type Expense struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// UserProfile holds the demographic and financial facts of one advisory request.
type UserProfile struct {
	Age      int       `json:"age"`
	Salary   float64   `json:"salary"`
	Expenses []Expense `json:"expenses"`
}

// NewUserProfile builds a profile whose expenses are a single total.
func NewUserProfile(age int, salary, expenses float64) UserProfile {
	return UserProfile{
		Age:      age,
		Salary:   salary,
		Expenses: []Expense{{Name: "total", Amount: expenses}},
	}
}

// TotalExpenses sums the expense components.
func (p UserProfile) TotalExpenses() float64 {
	var total float64
	for _, e := range p.Expenses {
		total += e.Amount
	}
	return total
}

// Validate rejects profiles that must not enter the pipeline.
func (p UserProfile) Validate() error {
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be positive, got %d", ErrInvalidInput, p.Age)
	}
	if err := checkAmount("salary", p.Salary); err != nil {
		return err
	}
	for _, e := range p.Expenses {
		if err := checkAmount("expense "+e.Name, e.Amount); err != nil {
			return err
		}
	}
	return nil
}

func checkAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a number", ErrInvalidInput, name)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %.2f", ErrInvalidInput, name, v)
	}
	return nil
}

// Session carries the profile between the input step and the advise step.
type Session struct {
	Profile       UserProfile  `json:"profile"`
	PredictedRisk RiskCategory `json:"predicted_risk,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
