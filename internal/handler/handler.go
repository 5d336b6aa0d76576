package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/investment-advisor/internal/middleware"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/Dan9191/investment-advisor/internal/service"
	"github.com/Dan9191/investment-advisor/internal/utils"
	"github.com/sirupsen/logrus"
)

// SignatureHeader carries the HMAC of the plan body
const SignatureHeader = "X-Plan-Signature"

type Handler struct {
	svc        *service.Service
	hmacSecret string
	log        *logrus.Logger
}

func NewHandler(svc *service.Service, hmacSecret string, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, hmacSecret: hmacSecret, log: log}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileRequest accepts either a total of monthly expenses or a breakdown
type profileRequest struct {
	Age              int              `json:"age"`
	Salary           float64          `json:"salary"`
	Expenses         float64          `json:"expenses"`
	ExpenseBreakdown []models.Expense `json:"expense_breakdown"`
}

func (p profileRequest) profile() models.UserProfile {
	if len(p.ExpenseBreakdown) > 0 {
		return models.UserProfile{Age: p.Age, Salary: p.Salary, Expenses: p.ExpenseBreakdown}
	}
	return models.NewUserProfile(p.Age, p.Salary, p.Expenses)
}

type adviseRequest struct {
	Risk      string `json:"risk"`
	EmailPlan bool   `json:"email_plan"`
}

type planRequest struct {
	profileRequest
	adviseRequest
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// SubmitProfile handles the profile step and returns the predicted risk and recommendations
func (h *Handler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.SubmitProfile(r.Context(), userID, req.profile())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// ClearProfile forgets the submitted profile
func (h *Handler) ClearProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.svc.ClearProfile(userID)
	w.WriteHeader(http.StatusNoContent)
}

// Advise builds a plan for the profile submitted earlier
func (h *Handler) Advise(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req adviseRequest
	if !h.decode(w, r, &req) {
		return
	}
	risk, err := optionalRisk(req.Risk)
	if err != nil {
		h.fail(w, err)
		return
	}
	plan, err := h.svc.Advise(r.Context(), userID, risk, req.EmailPlan)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writePlan(w, plan)
}

// Plan builds a plan from a profile and risk in one request
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req planRequest
	if !h.decode(w, r, &req) {
		return
	}
	risk, err := optionalRisk(req.Risk)
	if err != nil {
		h.fail(w, err)
		return
	}
	plan, err := h.svc.PlanNow(r.Context(), userID, req.profile(), risk, req.EmailPlan)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writePlan(w, plan)
}

// ListPlans returns the user's stored plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	plans, err := h.svc.PlanHistory(userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if plans == nil {
		plans = []models.StoredPlan{}
	}
	h.writeJSON(w, http.StatusOK, plans)
}

// KeyRate returns the central bank key rate
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.KeyRateNow(r.Context())
	if err != nil {
		h.log.Errorf("Failed to get key rate: %v", err)
		http.Error(w, "Failed to get key rate", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, rate)
}

// ProviderHealth returns the latest provider probe result
func (h *Handler) ProviderHealth(w http.ResponseWriter, r *http.Request) {
	status, ok := h.svc.ProviderStatus()
	if !ok {
		http.Error(w, "Provider probe has not run yet", http.StatusServiceUnavailable)
		return
	}
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, status)
}

func optionalRisk(s string) (models.RiskCategory, error) {
	if s == "" {
		return "", nil
	}
	return models.ParseRiskCategory(s)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		h.log.Errorf("Request failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writePlan(w http.ResponseWriter, plan *models.Plan) {
	body, err := json.Marshal(plan)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(SignatureHeader, utils.SignPayload(body, h.hmacSecret))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to write response: %v", err)
	}
}
