package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	ServerPort  string
	Environment string

	// Optional token guard on room management routes. Empty disables it.
	AdminJWTSecret string
	AdminJWTExpiry time.Duration

	AuditLogPath string
}

func Load() *Config {
	// Try to load .env file, but don't fail if it doesn't exist
	// (containers use environment variables directly).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ServerPort:     getEnv("SERVER_PORT", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		AdminJWTExpiry: getEnvAsDuration("ADMIN_JWT_EXPIRY", "24h"),
		AuditLogPath:   getEnv("AUDIT_LOG_PATH", "data/audit.log"),
	}

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvAsDuration retrieves environment variable as duration with default value
func getEnvAsDuration(key string, defaultVal string) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		valStr = defaultVal
	}
	duration, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %s", key, defaultVal)
		duration, _ = time.ParseDuration(defaultVal)
	}
	return duration
}
