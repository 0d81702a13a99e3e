package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Finvu    FinvuConfig
	Session  SessionConfig
	Security SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port               string
	Host               string
	LogLevel           string
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

// FinvuConfig holds AA network credentials, endpoints and request defaults
type FinvuConfig struct {
	BaseURL   string
	V1BaseURL string
	UserID    string
	Password  string
	Timeout   time.Duration

	DefaultTemplate    string
	LSPID              string
	RedirectURL        string
	ReturnURL          string
	AAID               string
	ConsentDescription string
}

// SessionConfig holds session store configuration
type SessionConfig struct {
	Backend         string
	Redis           RedisConfig
	DBPath          string
	CleanupInterval time.Duration
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DB       int
	TLS      bool
}

// Addr returns host:port for the redis client
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	APIKey string
}

const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

var requiredEnvVars = []string{
	"FINVU_BASE_URL",
	"FINVU_USER_ID",
	"FINVU_PASSWORD",
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	for _, key := range requiredEnvVars {
		if os.Getenv(key) == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", key)
		}
	}

	baseURL := strings.TrimRight(os.Getenv("FINVU_BASE_URL"), "/")

	config := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "3002"),
			Host:               getEnv("HOST", "0.0.0.0"),
			LogLevel:           getEnv("LOG_LEVEL", "INFO"),
			CORSAllowedOrigins: parseStringList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			MaxBodyBytes:       int64(parseInt(getEnv("MAX_BODY_BYTES", ""), 10<<20)),
		},
		Finvu: FinvuConfig{
			BaseURL:   baseURL,
			V1BaseURL: strings.Replace(baseURL, "/V2", "/V1", 1),
			UserID:    os.Getenv("FINVU_USER_ID"),
			Password:  os.Getenv("FINVU_PASSWORD"),
			Timeout:   parseDuration(getEnv("FINVU_HTTP_TIMEOUT", "30s"), 30*time.Second),

			DefaultTemplate:    getEnv("FINVU_DEFAULT_TEMPLATE", "FINVUDEMO_PERIODIC"),
			LSPID:              getEnv("FINVU_LSP_ID", "loanseva"),
			RedirectURL:        getEnv("FINVU_REDIRECT_URL", "https://sdkredirect.finvu.in/"),
			ReturnURL:          getEnv("FINVU_RETURN_URL", "http://localhost:8000/buyer/post-aa-consent"),
			AAID:               getEnv("FINVU_AA_ID", "cookiejar-aa@finvu.in"),
			ConsentDescription: getEnv("FINVU_CONSENT_DESCRIPTION", "Gold Loan Account Aggregator Consent"),
		},
		Session: SessionConfig{
			Backend: strings.ToLower(getEnv("SESSION_STORE", BackendRedis)),
			Redis: RedisConfig{
				Host:     getEnv("REDIS_HOST", "localhost"),
				Port:     getEnv("REDIS_PORT", "6379"),
				Username: getEnv("REDIS_USERNAME", ""),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
				TLS:      parseBool(getEnv("REDIS_TLS", "false"), false),
			},
			DBPath:          getEnv("SESSION_DB_PATH", "./db/sessions.db"),
			CleanupInterval: parseDuration(getEnv("SESSION_CLEANUP_INTERVAL", "1h"), time.Hour),
		},
		Security: SecurityConfig{
			APIKey: getEnv("API_KEY", ""),
		},
	}

	if config.Session.Backend != BackendRedis && config.Session.Backend != BackendSQLite {
		return nil, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", BackendRedis, BackendSQLite, config.Session.Backend)
	}

	return config, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseInt parses string to int with default value
func parseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func parseBool(value string, defaultValue bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// parseDuration parses string to time.Duration with default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// parseStringList parses comma-separated string to slice
func parseStringList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
