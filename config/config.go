package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Detector DetectorConfig
	History  HistoryConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	APIKey      string
	CORSOrigins []string
}

type DetectorConfig struct {
	BaseURL         string
	TimeoutSec      int
	FallbackDelayMs int
}

type HistoryConfig struct {
	Backend   string // "redis", "postgres", or "none"
	RedisAddr string
	DBDSN     string
	Limit     int
}

type AppConfig struct {
	Environment string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			APIKey:      getEnv("API_KEY", ""),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		},
		Detector: DetectorConfig{
			BaseURL:         getEnv("DETECTOR_URL", "https://ipdr-graph-engine.onrender.com/api/v1"),
			TimeoutSec:      getEnvAsInt("DETECTOR_TIMEOUT_SEC", 30),
			FallbackDelayMs: getEnvAsInt("FALLBACK_DELAY_MS", 1000),
		},
		History: HistoryConfig{
			Backend:   getEnv("HISTORY_BACKEND", "none"),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			DBDSN:     getEnv("DB_DSN", ""),
			Limit:     getEnvAsInt("HISTORY_LIMIT", 10),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Detector.BaseURL == "" {
		return fmt.Errorf("DETECTOR_URL is required")
	}

	switch c.History.Backend {
	case "none", "redis":
	case "postgres":
		if c.History.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required when HISTORY_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND must be redis, postgres, or none")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
