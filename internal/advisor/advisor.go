// Package advisor selects the generative text service that answers advisory requests.
package advisor

import (
	"fmt"

	"github.com/Dan9191/investment-advisor/internal/advisor/anthropic"
	"github.com/Dan9191/investment-advisor/internal/advisor/openai"
	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/planner"
	"github.com/sirupsen/logrus"
)

// New returns the advisory service named by ADVISOR_PROVIDER, or nil for "none".
// The pipeline falls back to the even split when the service is nil.
func New(cfg *config.Config, log *logrus.Logger) (planner.AdviceSource, error) {
	switch cfg.AdvisorProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AdvisorTimeout, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "anthropic":
		client, err := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AdvisorTimeout, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "none":
		log.Warn("No advisory service configured, every plan uses the fallback split")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown advisor provider %q", cfg.AdvisorProvider)
}
