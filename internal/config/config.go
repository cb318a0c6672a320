package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	SiteURL               string        `mapstructure:"site_url"`
	CSRFToken             string        `mapstructure:"csrf_token"`
	CSRFPagePath          string        `mapstructure:"csrf_page_path"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	StoreType            string        `mapstructure:"store_type"`
	BBoltPath            string        `mapstructure:"bbolt_path"`
	DraftTTLSeconds      int64         `mapstructure:"draft_ttl_seconds"`
	StoreCleanupSeconds  int64         `mapstructure:"store_cleanup_interval_seconds"`
	DraftTTL             time.Duration `mapstructure:"-"`
	StoreCleanupInterval time.Duration `mapstructure:"-"`
	AutosaveDelayMs      int64         `mapstructure:"autosave_delay_ms"`
	AutosaveDelay        time.Duration `mapstructure:"-"`
	PublishersFile       string        `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "lekha")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("site_url", "http://localhost:5000")
	v.SetDefault("csrf_token", "")
	v.SetDefault("csrf_page_path", "")
	v.SetDefault("request_timeout_seconds", 0)
	v.SetDefault("store_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/lekha.db")
	v.SetDefault("draft_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("store_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("autosave_delay_ms", 2000)
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	u, err := url.Parse(cfg.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid site_url %q (must be an absolute URL)", cfg.SiteURL)
	}

	if cfg.RequestTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.DraftTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid draft_ttl_seconds (must be positive seconds)")
	}
	if cfg.StoreCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid store_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.DraftTTL = time.Duration(cfg.DraftTTLSeconds) * time.Second
	cfg.StoreCleanupInterval = time.Duration(cfg.StoreCleanupSeconds) * time.Second

	if cfg.AutosaveDelayMs <= 0 {
		return nil, fmt.Errorf("invalid autosave_delay_ms (must be positive milliseconds)")
	}
	cfg.AutosaveDelay = time.Duration(cfg.AutosaveDelayMs) * time.Millisecond

	return &cfg, nil
}

// CSRFPageURL returns the absolute URL of the page carrying the csrf-token
// meta tag, or "" when scraping is disabled.
func (c *Config) CSRFPageURL() string {
	p := strings.TrimSpace(c.CSRFPagePath)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.SiteURL + p
}
