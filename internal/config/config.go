package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment configuration values for the application.
// These values are loaded from a .env file at startup.
type Config struct {
	// ServerPort is the port the HTTP server listens on
	ServerPort string

	// DatabasePath is the SQLite file backing the transcript and user store
	DatabasePath string

	// JWTSecret signs and verifies bearer tokens issued by the auth store
	JWTSecret string

	// StoreTimeout bounds every transcript read/write; a timed-out call
	// surfaces as a join or persistence failure to the affected connection
	StoreTimeout time.Duration

	// HistoryLimit is how many transcript messages a joining connection receives
	HistoryLimit int

	// RateLimitBurst is how many messages a participant may send per window
	RateLimitBurst int

	// RateLimitWindow is the trailing window the burst is counted over
	RateLimitWindow time.Duration

	// ReaperInterval is how often stale coordination state is swept
	ReaperInterval time.Duration

	// DevTokenEndpoint enables POST /api/auth/token for local development
	DevTokenEndpoint bool
}

// Load reads environment variables and returns a populated Config struct.
// It will load from a .env file if present, then read from environment variables.
// Falls back to sensible defaults if values are not set.
func Load() *Config {
	// Attempt to load .env file - not an error if it doesn't exist
	// as we may be running in production with real environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		ServerPort:       getEnv("PORT", "8080"),
		DatabasePath:     getEnv("DATABASE_PATH", "solace.db"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		StoreTimeout:     getDuration("STORE_TIMEOUT", 5*time.Second),
		HistoryLimit:     getInt("HISTORY_LIMIT", 50),
		RateLimitBurst:   getInt("RATE_LIMIT_BURST", 5),
		RateLimitWindow:  getDuration("RATE_LIMIT_WINDOW", time.Second),
		ReaperInterval:   getDuration("REAPER_INTERVAL", time.Minute),
		DevTokenEndpoint: getBool("DEV_TOKEN_ENDPOINT", false),
	}

	// Validate required configuration
	if config.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set; all connections will resolve as guests")
	}

	return config
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt retrieves an integer environment variable or returns a default value
func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getDuration retrieves a duration environment variable or returns a default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getBool retrieves a boolean environment variable or returns a default value
func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
