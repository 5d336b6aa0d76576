package advice

import (
	"strings"
	"testing"

	"github.com/Dan9191/investment-advisor/internal/models"
)

func TestBuildRequest(t *testing.T) {
	profile := models.NewUserProfile(30, 50000, 15000)
	inflation := models.InflationTable{"Austria": 3.1, "Germany": 2.2, "Belgium": 4}

	req := BuildRequest(profile, models.RiskMedium, inflation, models.DefaultRateTable())

	if req.System != SystemInstruction {
		t.Errorf("unexpected system instruction %q", req.System)
	}
	for _, want := range []string{
		"Age: 30 years",
		"Salary: ₹50000.00",
		"Monthly Expenses: ₹15000.00",
		"Risk Appetite: Medium",
		"Austria: 3.10%, Germany: 2.20%, Belgium: 4.00%",
		"Fixed Deposit: 7.00%",
		"6 x monthly expenses (₹90000.00)",
		"Low risk invests only in: Fixed Deposit, Mutual Funds, Gold.",
		"Medium risk invests only in: SIP, Balanced Mutual Funds, REITs, Gold.",
		"High risk invests only in: Stocks, Crypto, Gold, REITs, Aggressive Mutual Funds.",
		`"emergency_fund"`, `"investable_amount"`, `"investments"`, `"returns"`,
	} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildRequestIsDeterministic(t *testing.T) {
	profile := models.UserProfile{Age: 41, Salary: 80000, Expenses: []models.Expense{{Name: "rent", Amount: 20000}, {Name: "food", Amount: 8000}}}
	a := BuildRequest(profile, models.RiskHigh, models.DefaultInflationTable(), models.DefaultRateTable())
	b := BuildRequest(profile, models.RiskHigh, models.DefaultInflationTable(), models.DefaultRateTable())
	if a != b {
		t.Fatal("BuildRequest output differs between identical calls")
	}
	if !strings.Contains(a.Prompt, "rent: ₹20000.00") {
		t.Error("expense breakdown missing from prompt")
	}
}
