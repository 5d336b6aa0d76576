// Package session keeps the profile submitted in the first step until the user asks for advice.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/dgraph-io/ristretto"
	"github.com/sirupsen/logrus"
)

// ErrNotStored is returned when the cache refuses a session.
var ErrNotStored = errors.New("session not stored")

// Store is an in-memory session store keyed by user ID. Entries expire after the TTL.
type Store struct {
	cache *ristretto.Cache
	ttl   time.Duration
	log   *logrus.Logger
	now   func() time.Time
}

// NewStore creates a session store whose entries live for ttl.
func NewStore(ttl time.Duration, log *logrus.Logger) (*Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Store{cache: cache, ttl: ttl, log: log, now: time.Now}, nil
}

// Save stores the profile and its predicted risk, replacing any previous session.
// The session is readable once Save returns without error.
func (s *Store) Save(userID int64, profile models.UserProfile, predicted models.RiskCategory) (models.Session, error) {
	sess := models.Session{
		Profile:       profile,
		PredictedRisk: predicted,
		CreatedAt:     s.now().UTC(),
	}
	if !s.cache.SetWithTTL(userID, sess, 1, s.ttl) {
		s.log.WithField("user_id", userID).Warn("Session rejected by cache")
		return models.Session{}, fmt.Errorf("%w: user %d", ErrNotStored, userID)
	}
	s.cache.Wait()
	if _, ok := s.cache.Get(userID); !ok {
		s.log.WithField("user_id", userID).Warn("Session dropped by cache admission")
		return models.Session{}, fmt.Errorf("%w: user %d", ErrNotStored, userID)
	}
	return sess, nil
}

// Load returns the session of the user.
func (s *Store) Load(userID int64) (models.Session, error) {
	v, ok := s.cache.Get(userID)
	if !ok {
		return models.Session{}, fmt.Errorf("%w: no profile submitted for this user", models.ErrInvalidInput)
	}
	sess, ok := v.(models.Session)
	if !ok {
		return models.Session{}, fmt.Errorf("unexpected session type %T", v)
	}
	return sess, nil
}

// Delete forgets the session of the user.
func (s *Store) Delete(userID int64) {
	s.cache.Del(userID)
}

// Close stops the cache's background goroutines.
func (s *Store) Close() {
	s.cache.Close()
}
