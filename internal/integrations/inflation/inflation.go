package inflation

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"

	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Client fetches yearly inflation rates from the inflation provider
type Client struct {
	url    string
	client *resty.Client
	log    *logrus.Logger
}

// NewClient initializes a new inflation client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	client := resty.New()
	client.SetTimeout(cfg.HTTPTimeout)
	client.SetRetryCount(cfg.HTTPRetries)
	client.SetHeader("X-Api-Key", cfg.InflationAPIKey)

	return &Client{url: cfg.InflationURL, client: client, log: log}
}

// FetchInflation returns a rate for every tracked country. A country whose call fails or
// whose entry is malformed keeps the default of 0.
func (c *Client) FetchInflation(ctx context.Context) models.InflationTable {
	table, _ := c.FetchInflationWithStatus(ctx)
	return table
}

// FetchInflationWithStatus is FetchInflation plus the number of countries left at the default.
func (c *Client) FetchInflationWithStatus(ctx context.Context) (models.InflationTable, int) {
	table := models.DefaultInflationTable()
	fallbacks := 0

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, country := range models.Countries {
		wg.Add(1)
		go func(country string) {
			defer wg.Done()
			rate, err := c.fetchCountry(ctx, country)
			if err != nil {
				c.log.WithFields(logrus.Fields{"country": country, "error": err}).Warn("Using default inflation of 0%")
				mu.Lock()
				fallbacks++
				mu.Unlock()
				return
			}
			mu.Lock()
			table[country] = rate
			mu.Unlock()
		}(country)
	}
	wg.Wait()

	return table, fallbacks
}

func (c *Client) fetchCountry(ctx context.Context, country string) (float64, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("country", country).
		Get(c.url)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	c.log.Debugf("Inflation response for %s: %s", country, resp.String())

	if !gjson.ValidBytes(resp.Body()) {
		return 0, fmt.Errorf("response is not valid JSON")
	}
	return findRate(gjson.ParseBytes(resp.Body()), country)
}

// findRate scans the provider entries for the country. The provider may answer with a
// single object or an array of entries.
func findRate(doc gjson.Result, country string) (float64, error) {
	entries := []gjson.Result{doc}
	if doc.IsArray() {
		entries = doc.Array()
	}
	for _, entry := range entries {
		if !strings.EqualFold(strings.TrimSpace(entry.Get("country").String()), country) {
			continue
		}
		rate := entry.Get("yearly_rate_pct")
		if rate.Type != gjson.Number {
			return 0, fmt.Errorf("yearly_rate_pct is not numeric: %s", rate.Raw)
		}
		v := rate.Float()
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("yearly_rate_pct is not finite: %s", rate.Raw)
		}
		return v, nil
	}
	return 0, fmt.Errorf("no entry for %s", country)
}
