// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/footy.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// --------------------------------------------------------------------------
// Table names: single source of truth for the snapshot schema
// --------------------------------------------------------------------------

const (
	SnapshotsTable = "dataset_snapshots"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database (optional; enables stale-snapshot fallback)
	DatabaseURL           string        `validate:"omitempty,url"`
	DBPoolMinConns        int           `validate:"gte=0"`
	DBPoolMaxConns        int           `validate:"gte=1,gtefield=DBPoolMinConns"`
	DBPoolMaxLife         time.Duration `validate:"gt=0"`
	SnapshotRetentionDays int           `validate:"gte=1"`

	// API server
	APIHost     string `validate:"required"`
	APIPort     int    `validate:"gte=1,lte=65535"`
	Environment string `validate:"oneof=development staging production"`
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int           `validate:"gte=1"`
	RateLimitWindow   time.Duration `validate:"gt=0"`

	// Upstreams
	AFLAPIURL                 string        `validate:"required,url"`
	AFLCFSURL                 string        `validate:"required,url"`
	SquiggleURL               string        `validate:"required,url"`
	SquiggleUserAgent         string        `validate:"required"`
	UpstreamRequestsPerMinute int           `validate:"gte=1"`
	UpstreamTimeout           time.Duration `validate:"gt=0"`

	// R bridge (fitzRoy)
	RBridgeEnabled bool
	RscriptPath    string        `validate:"required_if=RBridgeEnabled true"`
	RPackage       string        `validate:"required"`
	CRANMirror     string        `validate:"required,url"`
	RTimeout       time.Duration `validate:"gt=0"`
	RAutoUpdate    bool

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:           envOr("DATABASE_URL", ""),
		DBPoolMinConns:        envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns:        envInt("DB_POOL_MAX_CONNS", 5),
		DBPoolMaxLife:         time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
		SnapshotRetentionDays: envInt("SNAPSHOT_RETENTION_DAYS", 30),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 5000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{"*"}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		AFLAPIURL:                 envOr("AFL_API_URL", "https://aflapi.afl.com.au/afl/v2"),
		AFLCFSURL:                 envOr("AFL_CFS_URL", "https://api.afl.com.au/cfs/afl"),
		SquiggleURL:               envOr("SQUIGGLE_URL", "https://api.squiggle.com.au/"),
		SquiggleUserAgent:         envOr("SQUIGGLE_USER_AGENT", "footy-data (https://github.com/albapepper/footy-data)"),
		UpstreamRequestsPerMinute: envInt("UPSTREAM_REQUESTS_PER_MINUTE", 120),
		UpstreamTimeout:           time.Duration(envInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,

		RBridgeEnabled: envBool("R_BRIDGE_ENABLED", true),
		RscriptPath:    envOr("RSCRIPT_PATH", "Rscript"),
		RPackage:       envOr("R_PACKAGE", "fitzRoy"),
		CRANMirror:     envOr("CRAN_MIRROR", "https://cloud.r-project.org"),
		RTimeout:       time.Duration(envInt("R_TIMEOUT_SECONDS", 300)) * time.Second,
		RAutoUpdate:    envBool("R_AUTO_UPDATE", true),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase reports whether the snapshot store is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
