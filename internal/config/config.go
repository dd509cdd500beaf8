// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults
// for server mode, upstream endpoints, and timeouts.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Telegram
	TelegramToken string

	// LLM Configuration
	GeminiAPIKey   string // Gemini API key for intent classification and reply composition
	GroqAPIKey     string // Groq API key (OpenAI-compatible fallback provider)
	GeminiModel    string // Gemini model (default: gemini-2.5-flash-lite)
	GroqModel      string // Groq model (default: llama-3.3-70b-versatile)
	HistoryWindow  int    // Recent turns passed to the classifier/composer (default: 5)

	// Data provider credentials and endpoints.
	// Base URLs are configurable so tests can point at local servers.
	WeatherAPIKey  string
	WeatherBaseURL string
	StockBaseURL   string
	NewsAPIKey     string
	NewsBaseURL    string
	NewsCountry    string // top-headlines country for "latest" queries

	// Storage
	MongoURI      string
	MongoDatabase string

	// Error tracking (optional)
	SentryDSN         string
	SentryEnvironment string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Pipeline timeouts (see timeouts.go for rationale)
	MessageTimeout time.Duration // full webhook pipeline per message
	FetchTimeout   time.Duration // single outbound data-provider call
	LLMTimeout     time.Duration // single model call
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:    getEnv("GROQ_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		GroqModel:     getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		HistoryWindow: getIntEnv("HISTORY_WINDOW", 5),

		WeatherAPIKey:  getEnv("WEATHER_API_KEY", ""),
		WeatherBaseURL: getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org"),
		StockBaseURL:   getEnv("STOCK_BASE_URL", "https://query1.finance.yahoo.com"),
		NewsAPIKey:     getEnv("NEWS_API_KEY", ""),
		NewsBaseURL:    getEnv("NEWS_BASE_URL", "https://newsapi.org"),
		NewsCountry:    getEnv("NEWS_COUNTRY", "in"),

		MongoURI:      getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "telegram_bot_db"),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),

		Port:            getEnv("PORT", "8000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		MessageTimeout: getDurationEnv("MESSAGE_TIMEOUT", MessageProcessing),
		FetchTimeout:   getDurationEnv("FETCH_TIMEOUT", FetchRequest),
		LLMTimeout:     getDurationEnv("LLM_TIMEOUT", ModelRequest),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set.
func (c *Config) Validate() error {
	var errs []error

	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_TOKEN is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.HistoryWindow <= 0 {
		errs = append(errs, fmt.Errorf("HISTORY_WINDOW must be positive, got %d", c.HistoryWindow))
	}
	if c.MessageTimeout <= 0 {
		errs = append(errs, fmt.Errorf("MESSAGE_TIMEOUT must be positive, got %v", c.MessageTimeout))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %v", c.LLMTimeout))
	}
	if c.MongoDatabase == "" {
		errs = append(errs, errors.New("MONGODB_DATABASE is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// getEnv retrieves environment variable with fallback to default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
