package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port       string
	DBConn     string
	LogLevel   string
	JWTSecret  string
	HMACSecret string
	CBRURL     string

	RatesURL        string
	RatesAPIKey     string
	InflationURL    string
	InflationAPIKey string
	HTTPTimeout     time.Duration
	HTTPRetries     int

	AdvisorProvider string
	AdvisorTimeout  time.Duration
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIURL       string
	AnthropicAPIKey string
	AnthropicModel  string
	ProjectionBasis string
	SessionTTL      time.Duration
	ProbeSchedule   string

	ClassifierURL string
	ScalerMean    []float64
	ScalerScale   []float64
	LabelClasses  []string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables, after a local .env file if present
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		DBConn:     getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=advisor sslmode=disable"),
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		HMACSecret: getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		CBRURL:     getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),

		RatesURL:        getEnv("RATES_URL", "https://api.api-ninjas.com/v1/returns"),
		RatesAPIKey:     getEnv("RATES_API_KEY", ""),
		InflationURL:    getEnv("INFLATION_URL", "https://api.api-ninjas.com/v1/inflation"),
		InflationAPIKey: getEnv("INF_API_KEY", ""),
		HTTPTimeout:     getSeconds("HTTP_TIMEOUT_SECONDS", 10),
		HTTPRetries:     getInt("HTTP_RETRIES", 0),

		AdvisorProvider: strings.ToLower(getEnv("ADVISOR_PROVIDER", "openai")),
		AdvisorTimeout:  getSeconds("ADVISOR_TIMEOUT_SECONDS", 60),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4"),
		OpenAIURL:       getEnv("OPENAI_URL", "https://api.openai.com/v1"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		ProjectionBasis: strings.ToLower(getEnv("PROJECTION_BASIS", "total")),
		SessionTTL:      time.Duration(getInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
		ProbeSchedule:   getEnv("PROBE_SCHEDULE", "@every 15m"),

		ClassifierURL: getEnv("CLASSIFIER_URL", ""),
		LabelClasses:  splitList(getEnv("LABEL_CLASSES", "High,Low,Medium")),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "advisor@example.com"),
	}

	var err error
	if cfg.ScalerMean, err = parseFloats(getEnv("SCALER_MEAN", "")); err != nil {
		return nil, fmt.Errorf("SCALER_MEAN: %w", err)
	}
	if cfg.ScalerScale, err = parseFloats(getEnv("SCALER_SCALE", "")); err != nil {
		return nil, fmt.Errorf("SCALER_SCALE: %w", err)
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("HMAC_SECRET is required")
	}
	switch cfg.AdvisorProvider {
	case "openai", "anthropic", "none":
	default:
		return nil, fmt.Errorf("ADVISOR_PROVIDER must be openai, anthropic or none, got %q", cfg.AdvisorProvider)
	}
	if len(cfg.ScalerMean) != len(cfg.ScalerScale) {
		return nil, fmt.Errorf("SCALER_MEAN and SCALER_SCALE must have the same length")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, ""))); err == nil && v >= 0 {
		return v
	}
	return defaultVal
}

func getSeconds(key string, defaultVal int) time.Duration {
	return time.Duration(getInt(key, defaultVal)) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFloats(raw string) ([]float64, error) {
	parts := splitList(raw)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}
