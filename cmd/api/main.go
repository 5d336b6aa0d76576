package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Dan9191/investment-advisor/internal/advisor"
	"github.com/Dan9191/investment-advisor/internal/classifier"
	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/handler"
	"github.com/Dan9191/investment-advisor/internal/integrations/cbr"
	"github.com/Dan9191/investment-advisor/internal/integrations/inflation"
	"github.com/Dan9191/investment-advisor/internal/integrations/marketdata"
	"github.com/Dan9191/investment-advisor/internal/middleware"
	"github.com/Dan9191/investment-advisor/internal/planner"
	"github.com/Dan9191/investment-advisor/internal/probe"
	"github.com/Dan9191/investment-advisor/internal/repository"
	"github.com/Dan9191/investment-advisor/internal/service"
	"github.com/Dan9191/investment-advisor/internal/session"
	"github.com/Dan9191/investment-advisor/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Upstream providers
	rates := marketdata.NewClient(cfg, logger)
	inflationClient := inflation.NewClient(cfg, logger)
	adviceSource, err := advisor.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to configure advisor: %v", err)
	}

	sessions, err := session.NewStore(cfg.SessionTTL, logger)
	if err != nil {
		logger.Fatalf("Failed to create session store: %v", err)
	}
	defer sessions.Close()

	providerProbe := probe.NewProbe(rates, inflationClient, cfg.HTTPTimeout*2, logger)
	if err := providerProbe.Start(cfg.ProbeSchedule); err != nil {
		logger.Fatalf("Failed to start provider probe: %v", err)
	}
	defer providerProbe.Stop()

	// Initialize layers
	engine := planner.NewEngine(rates, inflationClient, adviceSource, planner.ParseBasis(cfg.ProjectionBasis), cfg.AdvisorTimeout, logger)
	svc := service.NewService(service.Deps{
		Repo:       repository.NewRepository(db),
		Engine:     engine,
		Classifier: classifier.NewFromConfig(cfg, logger),
		Sessions:   sessions,
		KeyRate:    cbr.NewCBRClient(cfg, logger),
		Probe:      providerProbe,
		Mailer:     email.NewSender(cfg, logger),
	}, logger, cfg)
	h := handler.NewHandler(svc, cfg.HMACSecret, logger)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/key-rate", h.KeyRate).Methods("GET")
	r.HandleFunc("/health/providers", h.ProviderHealth).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/profile", h.SubmitProfile).Methods("POST")
	authRouter.HandleFunc("/profile", h.ClearProfile).Methods("DELETE")
	authRouter.HandleFunc("/advise", h.Advise).Methods("POST")
	authRouter.HandleFunc("/plan", h.Plan).Methods("POST")
	authRouter.HandleFunc("/plans", h.ListPlans).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AdvisorTimeout + 2*cfg.HTTPTimeout + 10*time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
