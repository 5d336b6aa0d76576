package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Client fetches expected percentage returns per instrument class from the market-data provider
type Client struct {
	client *resty.Client
	log    *logrus.Logger
}

// NewClient initializes a new market-data client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.RatesURL)
	client.SetTimeout(cfg.HTTPTimeout)
	client.SetRetryCount(cfg.HTTPRetries)
	client.SetHeader("X-Api-Key", cfg.RatesAPIKey)

	return &Client{client: client, log: log}
}

// FetchRates returns a rate for every instrument class. Each instrument is fetched on its
// own; any failure leaves that instrument at its default rate.
func (c *Client) FetchRates(ctx context.Context) models.RateTable {
	table, _ := c.FetchRatesWithStatus(ctx)
	return table
}

// FetchRatesWithStatus is FetchRates plus the number of instruments left at their default.
func (c *Client) FetchRatesWithStatus(ctx context.Context) (models.RateTable, int) {
	table := models.DefaultRateTable()
	fallbacks := 0

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, inst := range models.Instruments {
		wg.Add(1)
		go func(inst models.Instrument) {
			defer wg.Done()
			rate, err := c.fetchRate(ctx, inst)
			if err != nil {
				c.log.WithFields(logrus.Fields{"instrument": inst.String(), "error": err}).
					Warnf("Using default rate %.2f%%", inst.DefaultRate())
				mu.Lock()
				fallbacks++
				mu.Unlock()
				return
			}
			mu.Lock()
			table[inst] = rate
			mu.Unlock()
		}(inst)
	}
	wg.Wait()

	return table, fallbacks
}

func (c *Client) fetchRate(ctx context.Context, inst models.Instrument) (float64, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("instrument", inst.Slug()).
		Get("/{instrument}")
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	c.log.Debugf("Rates response for %s: %s", inst, resp.String())

	return numericField(resp.Body(), "percentage_return")
}

// numericField reads a finite number stored either as a JSON number or a numeric string.
func numericField(body []byte, path string) (float64, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("response is not valid JSON")
	}
	r := gjson.GetBytes(body, path)
	var (
		v   float64
		err error
	)
	switch r.Type {
	case gjson.Number:
		v = r.Float()
	case gjson.String:
		v, err = strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(r.Str), "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not numeric: %q", path, r.Str)
		}
	default:
		if !r.Exists() {
			return 0, fmt.Errorf("%s missing from response", path)
		}
		return 0, fmt.Errorf("%s is not numeric: %s", path, r.Raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s is not finite", path)
	}
	return v, nil
}
