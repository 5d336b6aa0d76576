package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/integrations/cbr"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/Dan9191/investment-advisor/internal/planner"
	"github.com/Dan9191/investment-advisor/internal/probe"
	"github.com/Dan9191/investment-advisor/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when login fails
var ErrInvalidCredentials = errors.New("invalid credentials")

// PlanHistoryLimit caps the number of stored plans returned per user
const PlanHistoryLimit = 20

// Repository is the persistence the service needs
type Repository interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)
	SavePlan(userID int64, plan *models.Plan) error
	FindPlansByUser(userID int64, limit int) ([]models.StoredPlan, error)
}

// RiskClassifier predicts a risk category from a profile
type RiskClassifier interface {
	Classify(ctx context.Context, profile models.UserProfile) (models.RiskCategory, error)
}

// SessionStore keeps the submitted profile between the two steps
type SessionStore interface {
	Save(userID int64, profile models.UserProfile, predicted models.RiskCategory) (models.Session, error)
	Load(userID int64) (models.Session, error)
	Delete(userID int64)
}

// KeyRateSource returns the central bank key rate
type KeyRateSource interface {
	GetKeyRate(ctx context.Context) (cbr.KeyRate, error)
}

// ProbeStatus returns the latest provider probe result
type ProbeStatus interface {
	Last() (probe.Status, bool)
}

// PlanMailer mails plan summaries
type PlanMailer interface {
	Enabled() bool
	SendPlanSummary(to, username string, plan *models.Plan) error
}

// Deps groups the collaborators of the service. Classifier, KeyRate, Probe and Mailer may be nil.
type Deps struct {
	Repo       Repository
	Engine     *planner.Engine
	Classifier RiskClassifier
	Sessions   SessionStore
	KeyRate    KeyRateSource
	Probe      ProbeStatus
	Mailer     PlanMailer
}

// Service handles business logic
type Service struct {
	Deps
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(deps Deps, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{Deps: deps, log: log, config: cfg}
}

// ProfileResult is the answer to the profile step
type ProfileResult struct {
	PredictedRisk   models.RiskCategory    `json:"predicted_risk,omitempty"`
	Inflation       models.InflationTable  `json:"inflation"`
	Recommendations models.Recommendations `json:"recommendations"`
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.Repo.CreateUser(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: email already exists", models.ErrInvalidInput)
		}
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.Repo.FindUserByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.Errorf("Login lookup failed: %v", err)
		}
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// SubmitProfile validates the profile, predicts the risk, stores the session and returns
// the inflation-adjusted recommendations
func (s *Service) SubmitProfile(ctx context.Context, userID int64, profile models.UserProfile) (*ProfileResult, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	predicted := s.classify(ctx, profile)
	if _, err := s.Sessions.Save(userID, profile, predicted); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	rates, inflation := s.Engine.FetchMarket(ctx)
	recommendations, warnings := planner.Recommend(inflation, rates, planner.RecommendationPrincipal)
	for _, w := range warnings {
		s.log.WithField("user_id", userID).Warnf("Recommendation unavailable: %s", w)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "predicted_risk": predicted}).Info("Profile submitted")
	return &ProfileResult{
		PredictedRisk:   predicted,
		Inflation:       inflation,
		Recommendations: recommendations,
	}, nil
}

// ClearProfile forgets the profile submitted by the user
func (s *Service) ClearProfile(userID int64) {
	s.Sessions.Delete(userID)
	s.log.WithField("user_id", userID).Info("Profile cleared")
}

// Advise builds a plan for the profile stored in the user's session. An empty risk uses the
// predicted one.
func (s *Service) Advise(ctx context.Context, userID int64, risk models.RiskCategory, emailPlan bool) (*models.Plan, error) {
	sess, err := s.Sessions.Load(userID)
	if err != nil {
		return nil, err
	}
	if risk == "" {
		risk = sess.PredictedRisk
	}
	if risk == "" {
		return nil, fmt.Errorf("%w: risk category is required", models.ErrInvalidInput)
	}
	return s.buildAndKeep(ctx, userID, sess.Profile, risk, emailPlan)
}

// PlanNow builds a plan from a profile and risk in a single step
func (s *Service) PlanNow(ctx context.Context, userID int64, profile models.UserProfile, risk models.RiskCategory, emailPlan bool) (*models.Plan, error) {
	if risk == "" {
		if err := profile.Validate(); err != nil {
			return nil, err
		}
		risk = s.classify(ctx, profile)
	}
	if risk == "" {
		return nil, fmt.Errorf("%w: risk category is required", models.ErrInvalidInput)
	}
	return s.buildAndKeep(ctx, userID, profile, risk, emailPlan)
}

// PlanHistory lists the user's stored plans
func (s *Service) PlanHistory(userID int64) ([]models.StoredPlan, error) {
	return s.Repo.FindPlansByUser(userID, PlanHistoryLimit)
}

// KeyRateNow returns the current central bank key rate
func (s *Service) KeyRateNow(ctx context.Context) (cbr.KeyRate, error) {
	if s.KeyRate == nil {
		return cbr.KeyRate{}, fmt.Errorf("key rate source not configured")
	}
	return s.KeyRate.GetKeyRate(ctx)
}

// ProviderStatus returns the latest provider probe result
func (s *Service) ProviderStatus() (probe.Status, bool) {
	if s.Probe == nil {
		return probe.Status{}, false
	}
	return s.Probe.Last()
}

func (s *Service) buildAndKeep(ctx context.Context, userID int64, profile models.UserProfile, risk models.RiskCategory, emailPlan bool) (*models.Plan, error) {
	plan, err := s.Engine.Build(ctx, profile, risk)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SavePlan(userID, plan); err != nil {
		s.log.WithField("plan_id", plan.ID).Errorf("Plan not stored: %v", err)
	}
	if emailPlan {
		s.mailPlan(userID, plan)
	}
	return plan, nil
}

func (s *Service) mailPlan(userID int64, plan *models.Plan) {
	if s.Mailer == nil || !s.Mailer.Enabled() {
		s.log.Warn("Plan e-mail requested but SMTP is not configured")
		return
	}
	user, err := s.Repo.FindUserByID(userID)
	if err != nil {
		s.log.Errorf("Plan e-mail skipped: %v", err)
		return
	}
	if err := s.Mailer.SendPlanSummary(user.Email, user.Username, plan); err != nil {
		s.log.WithField("plan_id", plan.ID).Errorf("Plan e-mail failed: %v", err)
	}
}

func (s *Service) classify(ctx context.Context, profile models.UserProfile) models.RiskCategory {
	if s.Classifier == nil {
		return ""
	}
	risk, err := s.Classifier.Classify(ctx, profile)
	if err != nil {
		s.log.Debugf("Risk not predicted: %v", err)
		return ""
	}
	return risk
}
