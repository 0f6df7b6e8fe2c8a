package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig points the client at the storefront backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StorageConfig locates the durable client-side key/value file.
type StorageConfig struct {
	Dir          string
	File         string
	PollInterval time.Duration
}

// DebounceConfig holds the coalescing windows for bursty user input.
type DebounceConfig struct {
	Promo    time.Duration
	Quantity time.Duration
	Scroll   time.Duration
}

// PagingConfig holds the default page sizes per list view.
type PagingConfig struct {
	CatalogSize int
	ProfileSize int
}

// StubConfig configures the bundled in-memory development backend.
type StubConfig struct {
	Addr            string
	JWTSecret       string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
}

// Config is the application configuration, defaults overridden by
// STOREFRONT_* environment variables.
type Config struct {
	Environment string
	API         APIConfig
	Storage     StorageConfig
	Debounce    DebounceConfig
	Paging      PagingConfig
	Stub        StubConfig
}

// Load builds the Config from defaults and environment.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("environment", "development")
	v.SetDefault("api.base_url", "http://localhost:8081")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("storage.dir", filepath.Join(home, ".storefront"))
	v.SetDefault("storage.file", "storage.json")
	v.SetDefault("storage.poll_interval", time.Second)
	v.SetDefault("debounce.promo", 500*time.Millisecond)
	v.SetDefault("debounce.quantity", 400*time.Millisecond)
	v.SetDefault("debounce.scroll", 300*time.Millisecond)
	v.SetDefault("paging.catalog_size", 20)
	v.SetDefault("paging.profile_size", 10)
	v.SetDefault("stub.addr", ":8081")
	v.SetDefault("stub.jwt_secret", "dev-secret-change-me")
	v.SetDefault("stub.token_ttl", 48*time.Hour)
	v.SetDefault("stub.shutdown_timeout", 10*time.Second)

	cfg := Config{
		Environment: v.GetString("environment"),
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Storage: StorageConfig{
			Dir:          v.GetString("storage.dir"),
			File:         v.GetString("storage.file"),
			PollInterval: v.GetDuration("storage.poll_interval"),
		},
		Debounce: DebounceConfig{
			Promo:    v.GetDuration("debounce.promo"),
			Quantity: v.GetDuration("debounce.quantity"),
			Scroll:   v.GetDuration("debounce.scroll"),
		},
		Paging: PagingConfig{
			CatalogSize: v.GetInt("paging.catalog_size"),
			ProfileSize: v.GetInt("paging.profile_size"),
		},
		Stub: StubConfig{
			Addr:            v.GetString("stub.addr"),
			JWTSecret:       v.GetString("stub.jwt_secret"),
			TokenTTL:        v.GetDuration("stub.token_ttl"),
			ShutdownTimeout: v.GetDuration("stub.shutdown_timeout"),
		},
	}

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("api.base_url must not be empty")
	}
	return cfg, nil
}
