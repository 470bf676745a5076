package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	RedisURL    string

	// Session tokens
	JWTSecret     string
	SessionTTLDay int

	// At-rest encryption for stored refresh tokens
	TokenEncryptionKey string

	// OAuth - Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	// Override endpoints for local testing; empty means Google's real endpoints.
	GoogleAuthURL  string
	GoogleTokenURL string

	// LLM
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64

	// Ingestion
	UnreadFetchLimit int

	// Draft generation rate limit, per identity
	GenerateRateLimit  int
	GenerateRateWindow time.Duration

	// Keep-alive ping
	PingURL      string
	PingInterval time.Duration

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		SessionTTLDay: getEnvInt("SESSION_TTL_DAYS", 7),

		TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", getEnv("JWT_SECRET", "")),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URI", ""),
		GoogleAuthURL:      getEnv("GOOGLE_AUTH_URL", ""),
		GoogleTokenURL:     getEnv("GOOGLE_TOKEN_URL", ""),

		LLMAPIKey:      getEnv("GROQ_API_KEY", getEnv("OPENAI_API_KEY", "")),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 500),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),

		UnreadFetchLimit: getEnvInt("UNREAD_FETCH_LIMIT", 20),

		GenerateRateLimit:  getEnvInt("GENERATE_RATE_LIMIT", 10),
		GenerateRateWindow: time.Duration(getEnvInt("GENERATE_RATE_WINDOW_SEC", 60)) * time.Second,

		PingURL:      getEnv("CRON_PING_URL", ""),
		PingInterval: time.Duration(getEnvInt("CRON_PING_INTERVAL_SEC", 300)) * time.Second,

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
