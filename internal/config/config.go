package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	SessionStore string
	SessionTTL   time.Duration
	Redis        RedisConfig

	DocumentAPI DocumentAPIConfig
	SubmitLimit SubmitLimitConfig

	DefaultCurrency string
	NodeID          int64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DocumentAPIConfig points at the remote backend that generates, signs and
// submits documents to SUNAT.
type DocumentAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// SubmitLimitConfig throttles submissions to the document API. It needs
// redis even when sessions are kept in memory.
type SubmitLimitConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
	LockTTL time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "facturador"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "facturador"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		SessionStore:      normalizeSessionStore(getenv("SESSION_STORE", SessionStoreMemory)),
		SessionTTL:        getenvDuration("SESSION_TTL", 8*time.Hour),
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
		},
		DocumentAPI: DocumentAPIConfig{
			BaseURL: strings.TrimSuffix(strings.TrimSpace(getenv("DOCUMENT_API_URL", "http://localhost:8000/api")), "/"),
			Token:   strings.TrimSpace(getenv("DOCUMENT_API_TOKEN", "")),
			Timeout: getenvDuration("DOCUMENT_API_TIMEOUT", 30*time.Second),
		},
		SubmitLimit: SubmitLimitConfig{
			Enabled: getenvBool("SUBMIT_RATE_LIMIT_ENABLED", false),
			Rate:    getenvFloat("SUBMIT_RATE_LIMIT_RATE", 0.5),
			Burst:   getenvInt("SUBMIT_RATE_LIMIT_BURST", 5),
			LockTTL: getenvDuration("SUBMIT_LOCK_TTL", time.Minute),
		},
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(getenv("DEFAULT_CURRENCY", "PEN"))),
		NodeID:          getenvInt64("NODE_ID", 1),
	}

	return cfg
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedisRequired reports whether any component needs a redis client.
func (c Config) RedisRequired() bool {
	return c.SessionStore == SessionStoreRedis || c.SubmitLimit.Enabled
}

func normalizeSessionStore(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case SessionStoreRedis:
		return SessionStoreRedis
	default:
		return SessionStoreMemory
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
