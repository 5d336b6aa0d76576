package advice

import (
	"fmt"
	"strings"

	"github.com/Dan9191/investment-advisor/internal/models"
)

// SystemInstruction is sent as the system message of every advisory request.
const SystemInstruction = "You are a financial advisor. Provide responses in JSON format only."

// EmergencyFundMonths is the number of months of expenses kept as an emergency fund.
const EmergencyFundMonths = 6

// Request is the text sent to the advisory service.
type Request struct {
	System string
	Prompt string
}

// BuildRequest formats the advisory prompt for a user. It is a pure function of its inputs.
func BuildRequest(profile models.UserProfile, risk models.RiskCategory, inflation models.InflationTable, rates models.RateTable) Request {
	var b strings.Builder

	b.WriteString("Given a user with:\n")
	fmt.Fprintf(&b, "- Age: %d years\n", profile.Age)
	fmt.Fprintf(&b, "- Salary: %s\n", models.Money(profile.Salary))
	fmt.Fprintf(&b, "- Monthly Expenses: %s\n", models.Money(profile.TotalExpenses()))
	if len(profile.Expenses) > 1 {
		for _, e := range profile.Expenses {
			fmt.Fprintf(&b, "  - %s: %s\n", e.Name, models.Money(e.Amount))
		}
	}
	fmt.Fprintf(&b, "- Risk Appetite: %s (Low, Medium, or High)\n", risk)

	parts := make([]string, 0, len(models.Countries))
	for _, c := range models.Countries {
		parts = append(parts, fmt.Sprintf("%s: %.2f%%", c, inflation[c]))
	}
	fmt.Fprintf(&b, "- Inflation Rates: %s\n", strings.Join(parts, ", "))

	b.WriteString("\nCurrent expected yearly returns:\n")
	for _, inst := range models.Instruments {
		fmt.Fprintf(&b, "- %s: %.2f%%\n", inst, rates[inst])
	}

	b.WriteString("\nAllocation rules:\n")
	b.WriteString("- Split the salary 50% needs, 30% wants, 20% investments.\n")
	fmt.Fprintf(&b, "- Keep an emergency fund of %d x monthly expenses (%s).\n",
		EmergencyFundMonths, models.Money(EmergencyFundMonths*profile.TotalExpenses()))
	for _, tier := range []models.RiskCategory{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		labels := make([]string, 0, 5)
		for _, opt := range tier.TierOptions() {
			labels = append(labels, opt.Label)
		}
		fmt.Fprintf(&b, "- %s risk invests only in: %s.\n", tier, strings.Join(labels, ", "))
	}

	b.WriteString(`
Return only a JSON object with exactly these top-level keys:
{
  "emergency_fund": "₹...",
  "investable_amount": "₹...",
  "investments": {"<instrument>": "<expected yearly return in percent>"},
  "returns": {"1_year": "₹...", "3_years": "₹...", "5_years": "₹..."}
}
Use only the instruments allowed for the user's risk appetite. Do not add any text outside the JSON.
`)

	return Request{System: SystemInstruction, Prompt: b.String()}
}
