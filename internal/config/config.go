package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBackendURL      = "http://localhost:8000"
	DefaultPort            = "8080"
	DefaultRequestTimeout  = 60 * time.Second
	DefaultMaxUploadMB     = 10
	DefaultSessionCapacity = 1024
)

// Config holds the settings shared by the web server and the CLI.
type Config struct {
	BackendURL      string
	Port            string
	RequestTimeout  time.Duration
	MaxUploadBytes  int64
	SessionCapacity int
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] No .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only. Invalid values
// fall back to defaults.
func FromEnv() Config {
	return Config{
		BackendURL:      getEnv("BACKEND_URL", DefaultBackendURL),
		Port:            getEnv("PORT", DefaultPort),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", DefaultMaxUploadMB)) << 20,
		SessionCapacity: getEnvInt("SESSION_CAPACITY", DefaultSessionCapacity),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		log.Printf("[CONFIG] Invalid %s=%q, using %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		log.Printf("[CONFIG] Invalid %s=%q, using %v", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
