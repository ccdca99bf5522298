package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is built once in main from the environment and passed by
// injection into the checker, notifier and rate limiter. Core logic
// never reads the environment directly.
type Config struct {
	Port        string
	DatabaseDSN string
	Environment string // "development" or "production"

	JWTSecret     string
	InternalToken string // shared secret for scheduler-trigger and admin routes

	AllowedOrigins []string

	Fetch FetchConfig
	SMS   SMSConfig
	Email EmailConfig

	// CostAlertThreshold is the fraction of MaxMonthlyCost at which the
	// cost monitor flags a user (e.g. 0.8 = 80%).
	CostAlertThreshold float64
}

type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type SMSConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string

	MaxPerHour     int
	MaxPerDay      int
	MaxMonthlyCost float64
	UnitCost       float64
}

type EmailConfig struct {
	APIKey string
	From   string
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load builds the Config from environment variables, applying defaults
// for everything except the database DSN and JWT secret.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		Environment: getEnv("ENVIRONMENT", "development"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		InternalToken: os.Getenv("INTERNAL_TOKEN"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		Fetch: FetchConfig{
			Timeout:   time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
			UserAgent: getEnv("FETCH_USER_AGENT", "PageWatch/1.0 (+https://pagewatch.dev)"),
		},

		SMS: SMSConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			From:       os.Getenv("TWILIO_FROM_NUMBER"),
			BaseURL:    getEnv("TWILIO_API_BASE", "https://api.twilio.com"),

			MaxPerHour:     getEnvInt("SMS_MAX_PER_HOUR", 10),
			MaxPerDay:      getEnvInt("SMS_MAX_PER_DAY", 50),
			MaxMonthlyCost: getEnvFloat("SMS_MAX_MONTHLY_COST", 10.0),
			UnitCost:       getEnvFloat("SMS_UNIT_COST", 0.0079),
		},

		Email: EmailConfig{
			APIKey: os.Getenv("RESEND_API_KEY"),
			From:   getEnv("EMAIL_FROM", "PageWatch <alerts@pagewatch.dev>"),
		},

		CostAlertThreshold: getEnvFloat("COST_ALERT_THRESHOLD", 0.8),
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN environment variable is not set")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)

	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)

	if err != nil {
		return fallback
	}

	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)

	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(value, 64)

	if err != nil {
		return fallback
	}

	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
