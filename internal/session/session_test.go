package session

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/sirupsen/logrus"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	store, err := NewStore(ttl, log)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t, time.Minute)
	profile := models.NewUserProfile(30, 50000, 10000)

	if _, err := store.Save(7, profile, models.RiskMedium); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sess, err := store.Load(7)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.PredictedRisk != models.RiskMedium {
		t.Errorf("predicted risk = %q, want Medium", sess.PredictedRisk)
	}
	if sess.Profile.Salary != 50000 || sess.Profile.TotalExpenses() != 10000 {
		t.Errorf("unexpected profile %+v", sess.Profile)
	}
}

func TestLoadMissing(t *testing.T) {
	store := newTestStore(t, time.Minute)

	_, err := store.Load(42)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t, time.Minute)
	if _, err := store.Save(1, models.NewUserProfile(40, 80000, 20000), ""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	store.Delete(1)

	if _, err := store.Load(1); err == nil {
		t.Fatal("expected session to be gone")
	}
}

func TestExpiry(t *testing.T) {
	store := newTestStore(t, 50*time.Millisecond)
	if _, err := store.Save(3, models.NewUserProfile(25, 30000, 5000), models.RiskLow); err != nil {
		t.Fatalf("Save: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, err := store.Load(3); err == nil {
		t.Fatal("expected session to expire")
	}
}

func TestSaveRejectedByCache(t *testing.T) {
	store := newTestStore(t, -time.Second)

	_, err := store.Save(9, models.NewUserProfile(30, 50000, 10000), models.RiskLow)
	if !errors.Is(err, ErrNotStored) {
		t.Fatalf("expected ErrNotStored, got %v", err)
	}
	if _, err := store.Load(9); err == nil {
		t.Fatal("rejected session is readable")
	}
}
