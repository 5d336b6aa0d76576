package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/investment-advisor/internal/advice"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RateSource returns a complete rate table. It never fails.
type RateSource interface {
	FetchRates(ctx context.Context) models.RateTable
}

// InflationSource returns a complete inflation table. It never fails.
type InflationSource interface {
	FetchInflation(ctx context.Context) models.InflationTable
}

// AdviceSource sends the advisory request to the generative text service.
type AdviceSource interface {
	AdviceText(ctx context.Context, req advice.Request) (string, error)
}

// ErrNoAdvisor is reported when the engine runs without an advisory service.
var ErrNoAdvisor = errors.New("no advisory service configured")

// Engine runs the advisory pipeline for one request at a time. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	rates         RateSource
	inflation     InflationSource
	advisor       AdviceSource
	basis         Basis
	adviceTimeout time.Duration
	log           *logrus.Logger
	now           func() time.Time
}

// NewEngine initializes a new pipeline engine. advisor may be nil.
func NewEngine(rates RateSource, inflation InflationSource, advisor AdviceSource, basis Basis, adviceTimeout time.Duration, log *logrus.Logger) *Engine {
	return &Engine{
		rates:         rates,
		inflation:     inflation,
		advisor:       advisor,
		basis:         basis,
		adviceTimeout: adviceTimeout,
		log:           log,
		now:           time.Now,
	}
}

// FetchMarket fetches the rate and inflation tables concurrently and repairs any gap,
// so both tables always hold their full key set.
func (e *Engine) FetchMarket(ctx context.Context) (models.RateTable, models.InflationTable) {
	var (
		wg        sync.WaitGroup
		rates     models.RateTable
		inflation models.InflationTable
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rates = e.rates.FetchRates(ctx)
	}()
	go func() {
		defer wg.Done()
		inflation = e.inflation.FetchInflation(ctx)
	}()
	wg.Wait()

	return completeRates(rates), completeInflation(inflation)
}

// Build turns a profile and risk tier into a complete plan. The only error it returns
// wraps models.ErrInvalidInput, raised before any upstream call.
func (e *Engine) Build(ctx context.Context, profile models.UserProfile, risk models.RiskCategory) (*models.Plan, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if !risk.Valid() {
		return nil, fmt.Errorf("%w: unknown risk category %q", models.ErrInvalidInput, risk)
	}

	plan := &models.Plan{
		ID:        uuid.NewString(),
		Risk:      risk,
		CreatedAt: e.now().UTC(),
		Stages:    []models.Stage{models.StageStart},
	}
	logger := e.log.WithFields(logrus.Fields{"plan_id": plan.ID, "risk": risk})

	rates, inflation := e.FetchMarket(ctx)
	plan.Rates, plan.Inflation = rates, inflation
	plan.Stages = append(plan.Stages, models.StageRatesFetched, models.StageInflationFetched)

	allocation, err := Allocate(profile.Salary)
	if err != nil {
		return nil, err
	}
	plan.Allocation = allocation
	plan.Stages = append(plan.Stages, models.StageAllocated)

	expenses := profile.TotalExpenses()
	text, adviceErr := e.requestAdvice(ctx, advice.BuildRequest(profile, risk, inflation, rates))
	plan.Stages = append(plan.Stages, models.StageAdviceRequested)

	adv, warnings, failure := e.resolveAdvice(text, adviceErr, allocation, expenses)
	if failure != "" {
		logger.Warnf("Using fallback plan: %s", failure)
		plan.Warnings = append(plan.Warnings, failure)
		adv = FallbackAdvice(risk, allocation, rates, expenses)
		plan.Stages = append(plan.Stages, models.StageAdviceFallback)
	} else {
		plan.Stages = append(plan.Stages, models.StageAdviceParsed)
	}
	for _, w := range warnings {
		logger.Debugf("Advice field replaced: %s", w)
	}
	plan.Warnings = append(plan.Warnings, warnings...)

	projected, projWarnings := ProjectAdvice(adv)
	plan.Warnings = append(plan.Warnings, projWarnings...)
	plan.Stages = append(plan.Stages, models.StageProjected)

	plan.Source = adv.Source
	plan.EmergencyFund = models.Money(round2(adv.EmergencyFund))
	plan.InvestableAmount = models.Money(round2(adv.Investable))
	plan.Returns = adv.Returns
	if plan.Returns == nil {
		plan.Returns = TotalReturns(projected)
	}
	plan.Entries = Assemble(allocation, projected)
	plan.Stages = append(plan.Stages, models.StageAssembled, models.StageDone)

	logger.WithField("source", plan.Source).Infof("Plan assembled with %d advised instruments", len(projected))
	return plan, nil
}

func (e *Engine) requestAdvice(ctx context.Context, req advice.Request) (string, error) {
	if e.advisor == nil {
		return "", ErrNoAdvisor
	}
	if e.adviceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.adviceTimeout)
		defer cancel()
	}
	return e.advisor.AdviceText(ctx, req)
}

// resolveAdvice returns the advice to project, its field-level warnings, and a non-empty
// failure reason when the caller has to fall back.
func (e *Engine) resolveAdvice(text string, adviceErr error, allocation models.AllocationPlan, expenses float64) (Advice, []string, string) {
	if adviceErr != nil {
		return Advice{}, nil, fmt.Sprintf("advisory service unavailable: %v", adviceErr)
	}
	payload, err := advice.Parse(text)
	if err != nil {
		return Advice{}, nil, fmt.Sprintf("advice could not be parsed: %v", err)
	}
	adv, warnings, ok := AdviceFromPayload(payload, allocation, expenses, e.basis)
	warnings = append(payload.Warnings, warnings...)
	if !ok {
		return Advice{}, warnings, "advice named no known instrument"
	}
	return adv, warnings, ""
}

func completeRates(t models.RateTable) models.RateTable {
	out := models.DefaultRateTable()
	for _, inst := range models.Instruments {
		if v, ok := t[inst]; ok {
			out[inst] = v
		}
	}
	return out
}

func completeInflation(t models.InflationTable) models.InflationTable {
	out := models.DefaultInflationTable()
	for _, c := range models.Countries {
		if v, ok := t[c]; ok {
			out[c] = v
		}
	}
	return out
}
