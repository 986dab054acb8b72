package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN string
	RedisURL    string
	ServerPort  string

	// Cached responses expire at the next CacheResetHour:CacheResetMinute
	// wall-clock time in CacheTZ.
	CacheTZ          string
	CacheResetHour   int
	CacheResetMinute int

	MaxLastDates        int
	DefaultLastDates    int
	MaxDynamicsSpanDays int

	RateLimitRPS   int
	RateLimitBurst int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := getEnv("DATABASE_DSN", "")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("POSTGRES_HOST", "localhost"),
			getEnv("POSTGRES_PORT", "5432"),
			getEnv("POSTGRES_USER", "postgres"),
			getEnv("POSTGRES_PASSWORD", ""),
			getEnv("POSTGRES_DB", "spimex"),
			getEnv("POSTGRES_SSLMODE", "disable"),
		)
	}

	return &Config{
		DatabaseDSN: dsn,
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),

		CacheTZ:          getEnv("CACHE_TZ", "Europe/Moscow"),
		CacheResetHour:   getEnvInt("CACHE_RESET_HOUR", 14),
		CacheResetMinute: getEnvInt("CACHE_RESET_MINUTE", 11),

		MaxLastDates:        getEnvInt("MAX_LAST_DATES", 60),
		DefaultLastDates:    getEnvInt("DEFAULT_LAST_DATES", 5),
		MaxDynamicsSpanDays: getEnvInt("MAX_DYNAMICS_SPAN_DAYS", 366),

		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 100),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 200),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
