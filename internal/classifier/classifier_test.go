package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/sirupsen/logrus"
)

type fixedPredictor struct {
	index int
	got   []float64
}

func (f *fixedPredictor) Predict(_ context.Context, features []float64) (int, error) {
	f.got = features
	return f.index, nil
}

func TestScalerTransform(t *testing.T) {
	s := Scaler{Mean: []float64{30, 50000, 20000}, Scale: []float64{10, 25000, 0}}
	got, err := s.Transform([]float64{40, 25000, 21000})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := []float64{1, -1, 1000}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("feature %d = %v, want %v", i, got[i], want[i])
		}
	}
	if _, err := s.Transform([]float64{1}); err == nil {
		t.Error("expected a length mismatch error")
	}
}

func TestClassify(t *testing.T) {
	predictor := &fixedPredictor{index: 2}
	c := New(Scaler{}, LabelEncoder{Classes: []string{"High", "Low", "Medium"}}, predictor)

	risk, err := c.Classify(context.Background(), models.NewUserProfile(35, 60000, 20000))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if risk != models.RiskMedium {
		t.Errorf("risk = %s, want Medium", risk)
	}
	if len(predictor.got) != 3 || predictor.got[0] != 35 || predictor.got[2] != 20000 {
		t.Errorf("unexpected features %v", predictor.got)
	}
}

func TestClassifyErrors(t *testing.T) {
	if _, err := New(Scaler{}, LabelEncoder{}, nil).Classify(context.Background(), models.NewUserProfile(1, 1, 1)); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	c := New(Scaler{}, LabelEncoder{Classes: []string{"Low"}}, &fixedPredictor{index: 4})
	if _, err := c.Classify(context.Background(), models.NewUserProfile(1, 1, 1)); err == nil {
		t.Error("expected out of range error")
	}
}

func TestHTTPPredictor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Features) != 1 || len(req.Features[0]) != 3 {
			t.Errorf("unexpected features %v", req.Features)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction": 1}`))
	}))
	defer server.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{ClassifierURL: server.URL, HTTPTimeout: time.Second, LabelClasses: []string{"High", "Low", "Medium"}}

	risk, err := NewFromConfig(cfg, log).Classify(context.Background(), models.NewUserProfile(22, 30000, 12000))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if risk != models.RiskLow {
		t.Errorf("risk = %s, want Low", risk)
	}
}
