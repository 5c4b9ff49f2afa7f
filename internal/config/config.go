package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Addr string

	// Database. Driver is "sqlite" (default, single-file) or "postgres".
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Quote provider. "sim" runs the built-in random-walk provider,
	// "http" talks to an external quote API.
	QuoteProvider string
	QuoteURL      string
	QuoteAPIKey   string
	QuoteTimeout  time.Duration

	SessionTTL time.Duration

	NumWorkers int
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults or environment variables")
	}

	return Config{
		Addr:          ":" + getEnv("PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBPath:        getEnv("DB_PATH", "ledger.db"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "trader"),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "trading_ledger"),
		QuoteProvider: getEnv("QUOTE_PROVIDER", "sim"),
		QuoteURL:      getEnv("QUOTE_URL", ""),
		QuoteAPIKey:   getEnv("QUOTE_API_KEY", ""),
		QuoteTimeout:  getDuration("QUOTE_TIMEOUT", 5*time.Second),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		NumWorkers:    getInt("NUM_WORKERS", 5),
	}
}

// Helper function to get environment variable with default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s=%q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
