package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL      string
	DataDir     string
	LogLevel    string
	Timeout     time.Duration
	Retries     int
	RateLimit   float64
	RateBurst   int
	RefreshCron string
}

var Cfg *Config

// Load reads .env (if present) and then the process environment.
func Load() {
	_ = godotenv.Load()

	Cfg = &Config{
		APIURL:      getEnv("SOCIAL_API_URL", "http://localhost:8000/api"),
		DataDir:     getEnv("SOCIAL_DATA_DIR", defaultDataDir()),
		LogLevel:    getEnv("SOCIAL_LOG_LEVEL", "warn"),
		Timeout:     getEnvAsDuration("SOCIAL_TIMEOUT", 10*time.Second),
		Retries:     getEnvAsInt("SOCIAL_RETRIES", 2),
		RateLimit:   getEnvAsFloat("SOCIAL_RATE_LIMIT", 20),
		RateBurst:   getEnvAsInt("SOCIAL_RATE_BURST", 10),
		RefreshCron: getEnv("SOCIAL_REFRESH_CRON", "*/1 * * * *"),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".socialclient"
	}
	return filepath.Join(home, ".socialclient")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}
