package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseURL string

	RedisURL string

	// AuthMode selects the identity resolver: "static" (fixed development
	// identity) or "jwt" (external-token-validated).
	AuthMode    string
	JWTSecret   string
	JWTIssuer   string
	DevIdentity string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// Rate-limit matrix: max requests per window per (class, action) cell.
	// Anonymous writes default to 0, always denied.
	RateLimitWindow time.Duration
	AuthReadLimit   int
	AuthWriteLimit  int
	AnonReadLimit   int
	AnonWriteLimit  int

	TreeCacheTTL time.Duration

	CORSOrigins string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		AuthMode:    getEnv("AUTH_MODE", "static"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", ""),
		DevIdentity: getEnv("DEV_IDENTITY", "dev-user"),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "icomment-attachments"),
		MinIOUseSSL:    getBoolEnv("MINIO_USE_SSL", false),

		RateLimitWindow: getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		AuthReadLimit:   getIntEnv("RATE_LIMIT_AUTH_READ", 120),
		AuthWriteLimit:  getIntEnv("RATE_LIMIT_AUTH_WRITE", 30),
		AnonReadLimit:   getIntEnv("RATE_LIMIT_ANON_READ", 60),
		AnonWriteLimit:  getIntEnv("RATE_LIMIT_ANON_WRITE", 0),

		TreeCacheTTL: getDurationEnv("TREE_CACHE_TTL", 2*time.Minute),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
