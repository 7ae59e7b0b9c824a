package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Persistence
	DatabasePath string

	// Auth; empty disables bearer-token checks.
	APIKey string

	// Allowed browser origins; "*" allows any.
	CORSOrigins []string

	// Upload limits
	MaxUploadBytes int64

	// Extraction
	ProfilePath          string
	MaxTreeDepth         int
	MaxTreeNodes         int
	MaxConcurrentExtract int
	ResultCacheSize      int

	StatsWindow time.Duration
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "5000"),

		DatabasePath: envOr("DATABASE_PATH", "creditgest.db"),

		APIKey:      os.Getenv("API_KEY"),
		CORSOrigins: envList("CORS_ORIGIN", []string{"*"}),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20), // 10MB

		ProfilePath:          os.Getenv("PROFILE_PATH"),
		MaxTreeDepth:         envInt("MAX_TREE_DEPTH", 256),
		MaxTreeNodes:         envInt("MAX_TREE_NODES", 500000),
		MaxConcurrentExtract: envInt("MAX_CONCURRENT_EXTRACT", 4),
		ResultCacheSize:      envInt("RESULT_CACHE_SIZE", 128),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.MaxTreeDepth <= 0 {
		cfg.MaxTreeDepth = 256
	}
	if cfg.MaxTreeNodes <= 0 {
		cfg.MaxTreeNodes = 500000
	}
	if cfg.MaxConcurrentExtract <= 0 {
		cfg.MaxConcurrentExtract = 4
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.ProfilePath != "" {
		if _, err := os.Stat(c.ProfilePath); err != nil {
			return fmt.Errorf("PROFILE_PATH: %w", err)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
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

// envList splits a comma-separated value, dropping empty entries.
func envList(key string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
