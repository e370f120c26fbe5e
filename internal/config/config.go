// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultModel is the completion model used when neither LLM_MODEL nor LLM_MODELS is set.
const DefaultModel = "meta-llama/llama-3.3-70b-instruct:free"

// Config holds all application configuration.
type Config struct {
	DatabaseURL      string
	DatabaseMaxConns int
	Port             string
	LogLevel         string
	LogFormat        string

	// Completion service (OpenRouter-compatible)
	OpenRouterAPIKey   string
	OpenRouterBaseURL  string
	LLMModels          []string
	LLMTimeout         time.Duration
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMRateLimit       float64
	LLMHTTPRetryMax    int
	LLMBreakerFailures int
	LLMBreakerTimeout  time.Duration
	SiteURL            string

	// Retrieval and composition
	RetrievalK         int
	ContextTokenBudget int

	// HTTP boundary
	CORSAllowedOrigins  []string
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	MaxRequestBodyBytes int64

	// Caches
	IntakeTTL        time.Duration
	IntakeCacheSize  int
	ProductCacheSize int

	// Observability
	MetricsEnabled     bool
	OtelTracesExporter string
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloat retrieves an environment variable as a float64 or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool retrieves an environment variable as a bool or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration retrieves an environment variable as a time.Duration (e.g. "30s") or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsList splits a comma-separated environment variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}

	var out []string

	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	if len(out) == 0 {
		return defaultValue
	}

	return out
}

// Load reads configuration from environment variables and returns a Config struct.
// It automatically loads .env file if it exists.
// DATABASE_URL is required. OPENROUTER_API_KEY is optional: without it the generator
// answers with a fixed "currently unable" message.
func Load() (*Config, error) {
	// Load .env file if it exists. Skip logging when absent (e.g. env from secrets/parameter store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required but not set")
	}

	retrievalK := getEnvAsInt("RETRIEVAL_K", 8)
	if retrievalK <= 0 {
		return nil, errors.New("RETRIEVAL_K must be a positive integer")
	}

	tokenBudget := getEnvAsInt("CONTEXT_TOKEN_BUDGET", 500)
	if tokenBudget <= 0 {
		return nil, errors.New("CONTEXT_TOKEN_BUDGET must be a positive integer")
	}

	maxTokens := getEnvAsInt("LLM_MAX_TOKENS", 800)
	if maxTokens <= 0 {
		return nil, errors.New("LLM_MAX_TOKENS must be a positive integer")
	}

	retryMax := getEnvAsInt("LLM_HTTP_RETRY_MAX", 0)
	if retryMax < 0 {
		return nil, errors.New("LLM_HTTP_RETRY_MAX must not be negative")
	}

	model := getEnv("LLM_MODEL", DefaultModel)

	cfg := &Config{
		DatabaseURL:      databaseURL,
		DatabaseMaxConns: getEnvAsInt("DATABASE_MAX_CONNS", 10),
		Port:             getEnv("PORT", "8000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),

		OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:  strings.TrimRight(getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
		LLMModels:          getEnvAsList("LLM_MODELS", []string{model}),
		LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LLMTemperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:       maxTokens,
		LLMRateLimit:       getEnvAsFloat("LLM_RATE_LIMIT", 5),
		LLMHTTPRetryMax:    retryMax,
		LLMBreakerFailures: getEnvAsInt("LLM_BREAKER_FAILURES", 5),
		LLMBreakerTimeout:  getEnvAsDuration("LLM_BREAKER_TIMEOUT", 30*time.Second),
		SiteURL:            getEnv("SITE_URL", "http://localhost:3000"),

		RetrievalK:         retrievalK,
		ContextTokenBudget: tokenBudget,

		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
		RateLimitRequests:   getEnvAsInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:     getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		MaxRequestBodyBytes: int64(getEnvAsInt("MAX_REQUEST_BODY_BYTES", 1<<20)),

		IntakeTTL:        getEnvAsDuration("INTAKE_TTL", 24*time.Hour),
		IntakeCacheSize:  getEnvAsInt("INTAKE_CACHE_SIZE", 10000),
		ProductCacheSize: getEnvAsInt("PRODUCT_CACHE_SIZE", 1000),

		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),
		OtelTracesExporter: os.Getenv("OTEL_TRACES_EXPORTER"),
	}

	return cfg, nil
}
