package config

import (
	"os"
	"strconv"

	"github.com/CareO-HQ/careo-sub007/internal/database"
)

// Config carehome-data (HTTP API) configuration
type Config struct {
	HTTP struct {
		Addr string
	}
	Env       string // "development" | "production"
	DBEnabled bool
	Database  database.DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	PDF    PDFConfig    `yaml:"pdf"`
	Notify NotifyConfig `yaml:"notify"`
}

// PDFConfig settings for the PDF rendering bridge
type PDFConfig struct {
	Enabled    bool   `yaml:"enabled"`     // run the background PDF worker
	AuthToken  string `yaml:"auth_token"`  // bearer token for /api/pdf/* (ignored in development)
	StorageDir string `yaml:"storage_dir"` // where rendered PDFs are written
	BaseURL    string `yaml:"base_url"`    // public prefix for stored PDF URLs
	ChromeBin  string `yaml:"chrome_bin"`  // optional explicit Chromium binary
}

// NotifyConfig outbound webhook for completed audits (disabled when URL is empty)
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.Env = getEnv("APP_ENV", "development")

	// Default to true for local dev: if DB is unavailable, carehome-data falls back to memory repos.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "carehome")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.PDF.Enabled = getEnv("PDF_ENABLED", "true") == "true"
	cfg.PDF.AuthToken = getEnv("PDF_AUTH_TOKEN", "")
	cfg.PDF.StorageDir = getEnv("PDF_STORAGE_DIR", "./data/pdfs")
	cfg.PDF.BaseURL = getEnv("PDF_BASE_URL", "/files/pdfs")
	cfg.PDF.ChromeBin = getEnv("PDF_CHROME_BIN", "")

	cfg.Notify.WebhookURL = getEnv("NOTIFY_WEBHOOK_URL", "")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
