// Package classifier wraps the pre-trained risk model: features are scaled with pre-fit
// parameters, sent to the model, and the predicted class index is mapped back to a label.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no model endpoint is configured.
var ErrNotConfigured = errors.New("risk classifier not configured")

// Predictor is the trained model: scaled features in, class index out.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (int, error)
}

// Scaler standardizes features with a pre-fit mean and scale per feature.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// Transform returns (x - mean) / scale for every feature. An empty scaler is the identity.
func (s Scaler) Transform(features []float64) ([]float64, error) {
	if len(s.Mean) == 0 {
		out := make([]float64, len(features))
		copy(out, features)
		return out, nil
	}
	if len(features) != len(s.Mean) || len(s.Scale) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(features))
	}
	out := make([]float64, len(features))
	for i, x := range features {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (x - s.Mean[i]) / scale
	}
	return out, nil
}

// LabelEncoder maps class indexes back to the labels the model was trained on.
type LabelEncoder struct {
	Classes []string
}

// Inverse returns the risk category of a class index.
func (e LabelEncoder) Inverse(index int) (models.RiskCategory, error) {
	if index < 0 || index >= len(e.Classes) {
		return "", fmt.Errorf("class index %d out of range", index)
	}
	return models.ParseRiskCategory(e.Classes[index])
}

// Classifier predicts the risk category of a profile.
type Classifier struct {
	scaler    Scaler
	encoder   LabelEncoder
	predictor Predictor
}

// New assembles a classifier. predictor may be nil, in which case Classify always fails
// with ErrNotConfigured.
func New(scaler Scaler, encoder LabelEncoder, predictor Predictor) *Classifier {
	return &Classifier{scaler: scaler, encoder: encoder, predictor: predictor}
}

// NewFromConfig builds the classifier described by the configuration.
func NewFromConfig(cfg *config.Config, log *logrus.Logger) *Classifier {
	var predictor Predictor
	if cfg.ClassifierURL != "" {
		predictor = NewHTTPPredictor(cfg, log)
	}
	return New(
		Scaler{Mean: cfg.ScalerMean, Scale: cfg.ScalerScale},
		LabelEncoder{Classes: cfg.LabelClasses},
		predictor,
	)
}

// Classify predicts the risk category from the [age, salary, expenses] feature vector.
func (c *Classifier) Classify(ctx context.Context, profile models.UserProfile) (models.RiskCategory, error) {
	if c.predictor == nil {
		return "", ErrNotConfigured
	}
	scaled, err := c.scaler.Transform([]float64{float64(profile.Age), profile.Salary, profile.TotalExpenses()})
	if err != nil {
		return "", err
	}
	index, err := c.predictor.Predict(ctx, scaled)
	if err != nil {
		return "", fmt.Errorf("prediction failed: %w", err)
	}
	return c.encoder.Inverse(index)
}

// HTTPPredictor calls a model server that answers {"prediction": <class index>}.
type HTTPPredictor struct {
	url    string
	client *resty.Client
	log    *logrus.Logger
}

// NewHTTPPredictor initializes a predictor for the configured model server
func NewHTTPPredictor(cfg *config.Config, log *logrus.Logger) *HTTPPredictor {
	client := resty.New()
	client.SetTimeout(cfg.HTTPTimeout)
	return &HTTPPredictor{url: cfg.ClassifierURL, client: client, log: log}
}

type predictRequest struct {
	Features [][]float64 `json:"features"`
}

type predictResponse struct {
	Prediction *int `json:"prediction"`
}

// Predict implements Predictor.
func (p *HTTPPredictor) Predict(ctx context.Context, features []float64) (int, error) {
	var out predictResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(predictRequest{Features: [][]float64{features}}).
		SetResult(&out).
		Post(p.url)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	if out.Prediction == nil {
		return 0, fmt.Errorf("prediction missing from response")
	}
	p.log.Debugf("Classifier predicted class %d for %v", *out.Prediction, features)
	return *out.Prediction, nil
}
