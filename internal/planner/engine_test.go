package planner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/investment-advisor/internal/advice"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/sirupsen/logrus"
)

type staticRates struct{ table models.RateTable }

func (s staticRates) FetchRates(context.Context) models.RateTable { return s.table }

type staticInflation struct{ table models.InflationTable }

func (s staticInflation) FetchInflation(context.Context) models.InflationTable { return s.table }

type fakeAdvisor struct {
	text  string
	err   error
	calls int
	last  advice.Request
}

func (f *fakeAdvisor) AdviceText(_ context.Context, req advice.Request) (string, error) {
	f.calls++
	f.last = req
	return f.text, f.err
}

type slowAdvisor struct{}

func (slowAdvisor) AdviceText(ctx context.Context, _ advice.Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngine(advisor AdviceSource, basis Basis) *Engine {
	return NewEngine(
		staticRates{models.DefaultRateTable()},
		staticInflation{models.DefaultInflationTable()},
		advisor, basis, time.Second, quietLogger(),
	)
}

func assertComplete(t *testing.T, plan models.InvestmentPlan) {
	t.Helper()
	labels := models.PlanLabels()
	if len(plan) != len(labels) {
		t.Errorf("plan has %d keys, want %d", len(plan), len(labels))
	}
	for _, label := range labels {
		if _, ok := plan[label]; !ok {
			t.Errorf("plan missing %q", label)
		}
	}
}

func TestBuildFallsBackWhenEverythingFails(t *testing.T) {
	advisor := &fakeAdvisor{err: errors.New("connection refused")}
	engine := newTestEngine(advisor, BasisTotal)

	plan, err := engine.Build(context.Background(), models.NewUserProfile(30, 50000, 15000), models.RiskLow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertComplete(t, plan.Entries)

	if plan.Source != models.SourceFallback {
		t.Errorf("source = %s, want fallback", plan.Source)
	}
	if len(plan.Warnings) != 1 {
		t.Errorf("expected a single warning, got %v", plan.Warnings)
	}
	for label, want := range map[string]models.Money{"Needs": 25000, "Wants": 15000, "Investments": 10000} {
		if got := plan.Entries[label].Amount; got != want {
			t.Errorf("%s = %v, want %v", label, got, want)
		}
		if r := plan.Entries[label].Returns; r == nil || *r != 0 {
			t.Errorf("%s should carry a zero flat return", label)
		}
	}

	want := map[models.Instrument]models.ProjectedReturn{
		models.FixedDeposit: {OneYear: 3566.66, ThreeYears: 4083.47, FiveYears: 4675.17},
		models.MutualFunds:  {OneYear: 3833.33, ThreeYears: 5069.58, FiveYears: 6704.52},
		models.Gold:         {OneYear: 3600, ThreeYears: 4199.04, FiveYears: 4897.76},
	}
	for inst, proj := range want {
		entry := plan.Entries[inst.String()]
		if entry.Amount != 3333.33 {
			t.Errorf("%s amount = %v, want 3333.33", inst, entry.Amount)
		}
		if entry.Rate != inst.DefaultRate() {
			t.Errorf("%s rate = %v, want %v", inst, entry.Rate, inst.DefaultRate())
		}
		if *entry.Projection != proj {
			t.Errorf("%s projection = %+v, want %+v", inst, *entry.Projection, proj)
		}
	}
	for _, inst := range []models.Instrument{models.SIP, models.Stocks, models.Crypto, models.REITs, models.AggressiveMutualFunds} {
		entry := plan.Entries[inst.String()]
		if entry.Amount != 0 || entry.Projection == nil || *entry.Projection != (models.ProjectedReturn{}) {
			t.Errorf("%s should be a zero placeholder, got %+v", inst, entry)
		}
	}
	if plan.EmergencyFund != 90000 {
		t.Errorf("emergency fund = %v, want 90000", plan.EmergencyFund)
	}
	if got := plan.Returns[1]; !got.Available || got.Value != 10999.99 {
		t.Errorf("1 year total = %+v, want 10999.99", got)
	}
}

func TestBuildStageTrace(t *testing.T) {
	cases := []struct {
		name    string
		advisor AdviceSource
		branch  models.Stage
	}{
		{"parsed", &fakeAdvisor{text: `{"emergency_fund":"₹1","investable_amount":"₹10000","investments":{"Gold":"8"}}`}, models.StageAdviceParsed},
		{"garbage", &fakeAdvisor{text: "I cannot help with that."}, models.StageAdviceFallback},
		{"no advisor", nil, models.StageAdviceFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := newTestEngine(tc.advisor, BasisTotal).Build(context.Background(), models.NewUserProfile(25, 1000, 100), models.RiskMedium)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			want := []models.Stage{
				models.StageStart, models.StageRatesFetched, models.StageInflationFetched, models.StageAllocated,
				models.StageAdviceRequested, tc.branch, models.StageProjected, models.StageAssembled, models.StageDone,
			}
			if len(plan.Stages) != len(want) {
				t.Fatalf("stages = %v, want %v", plan.Stages, want)
			}
			for i := range want {
				if plan.Stages[i] != want[i] {
					t.Fatalf("stages = %v, want %v", plan.Stages, want)
				}
			}
		})
	}
}

func TestBuildUsesParsedAdviceAgainstTotal(t *testing.T) {
	advisor := &fakeAdvisor{text: "```json\n" + `{
		"emergency_fund": "₹90,000",
		"investable_amount": "₹10,000",
		"investments": {"Stocks": "14%", "Crypto": "oops", "Moon Shots": "80"},
		"returns": {"1_year": "₹11,200", "5_years": "₹19,000"}
	}` + "\n```"}
	engine := newTestEngine(advisor, BasisTotal)

	plan, err := engine.Build(context.Background(), models.NewUserProfile(28, 50000, 15000), models.RiskHigh)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertComplete(t, plan.Entries)
	if plan.Source != models.SourceAdvice {
		t.Fatalf("source = %s, want advice", plan.Source)
	}
	if advisor.calls != 1 || advisor.last.System != advice.SystemInstruction {
		t.Errorf("advisor called %d times with %+v", advisor.calls, advisor.last)
	}

	stocks := plan.Entries[models.Stocks.String()]
	if stocks.Amount != 10000 || stocks.Rate != 14 || stocks.Projection.OneYear != 11400 {
		t.Errorf("unexpected Stocks entry %+v / %+v", stocks, stocks.Projection)
	}
	crypto := plan.Entries[models.Crypto.String()]
	if crypto.Rate != 0 || crypto.Projection.FiveYears != 10000 {
		t.Errorf("Crypto should project at 0%%, got %+v / %+v", crypto, crypto.Projection)
	}
	if _, ok := plan.Entries["Moon Shots"]; ok {
		t.Error("unknown instrument leaked into the plan")
	}
	if plan.Returns[3].Available || !plan.Returns[5].Available || plan.Returns[5].Value != 19000 {
		t.Errorf("unexpected returns %+v", plan.Returns)
	}
	if len(plan.Warnings) != 2 {
		t.Errorf("expected two field warnings, got %v", plan.Warnings)
	}
}

func TestBuildSurvivesOverflowingAdvice(t *testing.T) {
	advisor := &fakeAdvisor{text: `{"emergency_fund":"1","investable_amount":"10000","investments":{"Crypto":1e308,"Stocks":1e400,"Gold":"8"},"returns":{"1_year":1e400,"3_years":"₹13,000"}}`}
	engine := newTestEngine(advisor, BasisTotal)

	plan, err := engine.Build(context.Background(), models.NewUserProfile(28, 50000, 15000), models.RiskHigh)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertComplete(t, plan.Entries)
	if plan.Source != models.SourceAdvice {
		t.Fatalf("source = %s, want advice", plan.Source)
	}

	crypto := plan.Entries[models.Crypto.String()]
	if crypto.Amount != 0 || crypto.Projection.FiveYears != 0 {
		t.Errorf("overflowing Crypto should be a zero placeholder, got %+v / %+v", crypto, crypto.Projection)
	}
	if gold := plan.Entries[models.Gold.String()]; gold.Projection.OneYear != 10800 {
		t.Errorf("Gold 1-year projection = %v, want 10800", gold.Projection.OneYear)
	}
	if plan.Returns[1].Available || plan.Returns[3].Value != 13000 {
		t.Errorf("unexpected returns %+v", plan.Returns)
	}
	if len(plan.Warnings) != 2 {
		t.Errorf("expected a warning for Stocks and one for Crypto, got %v", plan.Warnings)
	}
	if _, err := json.Marshal(plan); err != nil {
		t.Errorf("Marshal: %v", err)
	}
}

func TestBuildShareBasis(t *testing.T) {
	advisor := &fakeAdvisor{text: `{"emergency_fund":0,"investable_amount":9000,"investments":{"SIP":"12","REITs":"9","Gold":"8"}}`}
	plan, err := newTestEngine(advisor, BasisShare).Build(context.Background(), models.NewUserProfile(40, 45000, 0), models.RiskMedium)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, inst := range []models.Instrument{models.SIP, models.REITs, models.Gold} {
		if got := plan.Entries[inst.String()].Amount; got != 3000 {
			t.Errorf("%s amount = %v, want 3000", inst, got)
		}
	}
}

func TestBuildAdviceTimeout(t *testing.T) {
	engine := NewEngine(staticRates{models.DefaultRateTable()}, staticInflation{models.DefaultInflationTable()},
		slowAdvisor{}, BasisTotal, 20*time.Millisecond, quietLogger())

	plan, err := engine.Build(context.Background(), models.NewUserProfile(30, 50000, 15000), models.RiskLow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Source != models.SourceFallback {
		t.Fatalf("source = %s, want fallback after timeout", plan.Source)
	}
}

func TestBuildRepairsIncompleteTables(t *testing.T) {
	engine := NewEngine(
		staticRates{models.RateTable{models.Gold: 11}},
		staticInflation{nil},
		nil, BasisTotal, time.Second, quietLogger(),
	)
	plan, err := engine.Build(context.Background(), models.NewUserProfile(30, 50000, 15000), models.RiskLow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !plan.Rates.Complete() || !plan.Inflation.Complete() {
		t.Fatalf("tables incomplete: %v %v", plan.Rates, plan.Inflation)
	}
	if plan.Rates[models.Gold] != 11 || plan.Rates[models.FixedDeposit] != 7 {
		t.Errorf("unexpected rates %v", plan.Rates)
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	advisor := &fakeAdvisor{}
	engine := newTestEngine(advisor, BasisTotal)

	cases := []struct {
		name    string
		profile models.UserProfile
		risk    models.RiskCategory
	}{
		{"negative salary", models.NewUserProfile(30, -100, 10), models.RiskLow},
		{"zero age", models.NewUserProfile(0, 100, 10), models.RiskLow},
		{"negative expense", models.NewUserProfile(30, 100, -10), models.RiskLow},
		{"unknown risk", models.NewUserProfile(30, 100, 10), models.RiskCategory("Extreme")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := engine.Build(context.Background(), tc.profile, tc.risk)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if plan != nil {
				t.Fatal("no plan expected on invalid input")
			}
		})
	}
	if advisor.calls != 0 {
		t.Fatalf("advisor called %d times for rejected input", advisor.calls)
	}
}
