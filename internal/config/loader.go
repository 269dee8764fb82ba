package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides. A double underscore separates
// levels: TENANTMAP_HTTP__LISTEN_ADDR sets http.listen_addr.
const EnvPrefix = "TENANTMAP_"

var (
	current  atomic.Pointer[Config]
	validate = validator.New()
)

var defaults = map[string]any{
	"http.listen_addr":         ":8080",
	"http.request_timeout":     10 * time.Second,
	"http.shutdown_timeout":    15 * time.Second,
	"http.retry_backoff":       100 * time.Millisecond,
	"dynamodb.table":           "tenantmap",
	"dynamodb.pagination":      "table",
	"dynamodb.cursor_ttl":      24 * time.Hour,
	"registry.default_country": "RO",
	"log.level":                "info",
	"log.tee":                  true,
	"tracing.enabled":          false,
	"tracing.service_name":     "tenantmap",
	"vault.enabled":            false,
	"vault.ttl":                5 * time.Minute,
}

// Load layers defaults, the YAML file at path (optional), a .env file next to
// it and environment overrides, validates the result and caches it for Get.
// An empty path skips the YAML layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", path, "err", err)
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		zap.S().Debugw("config yaml loaded", "file", path)
	}

	// .env is optional; variables already in the environment win
	envFile := ".env"
	if path != "" {
		envFile = filepath.Join(filepath.Dir(path), ".env")
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		zap.S().Warnw("config dotenv load failed", "file", envFile, "err", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Registry.DefaultCountry = strings.ToUpper(cfg.Registry.DefaultCountry)

	if err := validate.Struct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"table", cfg.DynamoDB.Table,
		"pagination", cfg.DynamoDB.Pagination,
		"default_country", cfg.Registry.DefaultCountry,
	)
	return &cfg, nil
}

// envKey maps TENANTMAP_HTTP__LISTEN_ADDR to http.listen_addr.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// Get returns the last configuration loaded, or nil.
func Get() *Config { return current.Load() }
