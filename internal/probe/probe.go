// Package probe periodically checks the market-data providers and keeps the latest result.
package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RateChecker fetches the rate table and reports how many instruments fell back.
type RateChecker interface {
	FetchRatesWithStatus(ctx context.Context) (models.RateTable, int)
}

// InflationChecker fetches the inflation table and reports how many countries fell back.
type InflationChecker interface {
	FetchInflationWithStatus(ctx context.Context) (models.InflationTable, int)
}

// Status is the outcome of one probe run.
type Status struct {
	CheckedAt          time.Time             `json:"checked_at"`
	RateFallbacks      int                   `json:"rate_fallbacks"`
	InflationFallbacks int                   `json:"inflation_fallbacks"`
	Healthy            bool                  `json:"healthy"`
	Rates              models.RateTable      `json:"rates"`
	Inflation          models.InflationTable `json:"inflation"`
}

// Probe runs the provider check on a cron schedule.
type Probe struct {
	rates     RateChecker
	inflation InflationChecker
	timeout   time.Duration
	log       *logrus.Logger
	cron      *cron.Cron
	now       func() time.Time

	mu   sync.RWMutex
	last *Status
}

// NewProbe initializes a new provider probe. Each run is bounded by timeout.
func NewProbe(rates RateChecker, inflation InflationChecker, timeout time.Duration, log *logrus.Logger) *Probe {
	return &Probe{
		rates:     rates,
		inflation: inflation,
		timeout:   timeout,
		log:       log,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start schedules the probe with a cron spec such as "@every 15m" and runs it once immediately.
func (p *Probe) Start(spec string) error {
	if _, err := p.cron.AddFunc(spec, func() { p.Run(context.Background()) }); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", spec, err)
	}
	p.cron.Start()
	go p.Run(context.Background())
	p.log.Infof("Provider probe scheduled: %s", spec)
	return nil
}

// Stop halts the schedule and waits for a running probe to finish.
func (p *Probe) Stop() {
	<-p.cron.Stop().Done()
}

// Run checks both providers once and records the result.
func (p *Probe) Run(ctx context.Context) Status {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var (
		wg     sync.WaitGroup
		status Status
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		status.Rates, status.RateFallbacks = p.rates.FetchRatesWithStatus(ctx)
	}()
	go func() {
		defer wg.Done()
		status.Inflation, status.InflationFallbacks = p.inflation.FetchInflationWithStatus(ctx)
	}()
	wg.Wait()

	status.CheckedAt = p.now().UTC()
	status.Healthy = status.RateFallbacks == 0 && status.InflationFallbacks == 0

	p.mu.Lock()
	p.last = &status
	p.mu.Unlock()

	entry := p.log.WithFields(logrus.Fields{
		"rate_fallbacks":      status.RateFallbacks,
		"inflation_fallbacks": status.InflationFallbacks,
	})
	if status.Healthy {
		entry.Info("Provider probe passed")
	} else {
		entry.Warn("Provider probe found fallbacks")
	}
	return status
}

// Last returns the latest probe result, or false if the probe has not run yet.
func (p *Probe) Last() (Status, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return Status{}, false
	}
	return *p.last, true
}
