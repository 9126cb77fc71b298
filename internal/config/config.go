package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"expensio/internal/logger"
)

type Config struct {
	Env         string
	HTTPAddr    string
	DatabaseURL string
	CORSOrigin  string

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	MetricsUser string
	MetricsPass string
}

// IsProduction controls the Secure flag on the refresh cookie.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment")
	}

	return &Config{
		Env:           getEnv("APP_ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:3000"),
		AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:     getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:    getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		MetricsUser:   getEnv("METRICS_USER", "metrics"),
		MetricsPass:   os.Getenv("METRICS_PASS"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("invalid duration in env, using default: " + key)
		return fallback
	}
	return d
}
