package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Extraction backend connection
	BackendURL    string
	BackendAPIKey string

	// Source PDFs for page dimensions
	PDFDir string

	// Session state
	SessionDBPath string
	SessionTTL    time.Duration

	// View defaults
	DefaultZoom float64
}

func Load() Config {
	// Environment variables already set take precedence over .env.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8095"),

		BackendURL:    envOr("BACKEND_URL", "http://localhost:8000"),
		BackendAPIKey: os.Getenv("BACKEND_API_KEY"),

		PDFDir: envOr("PDF_DIR", "./data/pdfs"),

		SessionDBPath: envOr("SESSION_DB_PATH", "./data/sessions.db"),
		SessionTTL:    envDuration("SESSION_TTL", 24*time.Hour),

		DefaultZoom: envFloat("DEFAULT_ZOOM", 1.0),
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.DefaultZoom <= 0 {
		cfg.DefaultZoom = 1.0
	}

	return cfg
}

func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.PDFDir == "" {
		return fmt.Errorf("PDF_DIR is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
