package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Browser   BrowserConfig   `yaml:"browser"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Harvest   HarvestConfig   `yaml:"harvest"`
	Enrich    EnrichConfig    `yaml:"enrich"`
	Engine    EngineConfig    `yaml:"engine"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Webhook   WebhookConfig   `yaml:"webhook"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8080
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool `yaml:"headless"` // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int `yaml:"max_pages"` // default: 10

	// DefaultProxy is the proxy URL for all browser traffic.
	DefaultProxy string `yaml:"proxy"`

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `yaml:"no_sandbox"` // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string `yaml:"browser_bin"`

	// Stealth injects the stealth script into every tab.
	Stealth bool `yaml:"stealth"` // default: true
}

// ScraperConfig controls per-tab behavior.
type ScraperConfig struct {
	// PageTimeout bounds every single browser operation on a tab.
	PageTimeout time.Duration `yaml:"page_timeout"` // default: 60s

	// NavigationTimeout bounds loading the listing page.
	NavigationTimeout time.Duration `yaml:"navigation_timeout"` // default: 30s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string `yaml:"blocked_resource_types"`
}

// HarvestConfig controls the listing stage.
type HarvestConfig struct {
	// ListingURL is the directory page filters are appended to.
	ListingURL string `yaml:"listing_url"` // default: "https://www.ycombinator.com/companies"

	// Origin is prepended to site-relative detail links.
	Origin string `yaml:"origin"` // default: "https://www.ycombinator.com"

	// StallLimit is the number of consecutive scrolls without new items
	// after which the listing is treated as exhausted.
	StallLimit int `yaml:"stall_limit"` // default: 2

	// MaxScrolls caps scrolling per run. 0 disables the cap.
	MaxScrolls int `yaml:"max_scrolls"` // default: 500

	// JobTTL is how long finished async jobs stay queryable.
	JobTTL time.Duration `yaml:"job_ttl"` // default: 1h
}

// EnrichConfig controls the detail stage.
type EnrichConfig struct {
	// Concurrency is the number of detail pages fetched at once.
	Concurrency int `yaml:"concurrency"` // default: 10

	// DetailTimeout bounds a single detail fetch.
	DetailTimeout time.Duration `yaml:"detail_timeout"` // default: 30s
}

// EngineConfig controls which engine fetches detail pages.
type EngineConfig struct {
	// EnableMultiEngine starts each host on the HTTP engine and moves it to
	// the browser after a failed page. When false only the browser is used.
	EnableMultiEngine bool `yaml:"enable_multi_engine"` // default: true

	// HTTPTimeout is the deadline for the pure HTTP engine.
	HTTPTimeout time.Duration `yaml:"http_timeout"` // default: 10s

	// MemoryTTL is how long a host's engine choice is remembered.
	MemoryTTL time.Duration `yaml:"memory_ttl"` // default: 1h
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool `yaml:"enabled"` // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 `yaml:"rps"` // default: 1

	// Burst is the maximum burst size per API key.
	Burst int `yaml:"burst"` // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"
}

// WebhookConfig controls job completion callbacks.
type WebhookConfig struct {
	// Timeout bounds one delivery attempt.
	Timeout time.Duration `yaml:"timeout"` // default: 10s

	// RetryDelays are the waits before each attempt; its length is the attempt count.
	RetryDelays []time.Duration `yaml:"retry_delays"` // default: [0s, 1s, 5s, 30s]
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Browser: BrowserConfig{
			Headless: true,
			MaxPages: 10,
			Stealth:  true,
		},
		Scraper: ScraperConfig{
			PageTimeout:          60 * time.Second,
			NavigationTimeout:    30 * time.Second,
			BlockedResourceTypes: []string{"Image", "Font", "Media"},
		},
		Harvest: HarvestConfig{
			ListingURL: "https://www.ycombinator.com/companies",
			Origin:     "https://www.ycombinator.com",
			StallLimit: 2,
			MaxScrolls: 500,
			JobTTL:     time.Hour,
		},
		Enrich: EnrichConfig{
			Concurrency:   10,
			DetailTimeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			EnableMultiEngine: true,
			HTTPTimeout:       10 * time.Second,
			MemoryTTL:         time.Hour,
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Webhook: WebhookConfig{
			Timeout:     10 * time.Second,
			RetryDelays: []time.Duration{0, time.Second, 5 * time.Second, 30 * time.Second},
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// HARVEST_CONFIG_FILE (if set), then HARVEST_* environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("HARVEST_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envOr("HARVEST_HOST", c.Server.Host)
	c.Server.Port = envIntOr("HARVEST_PORT", c.Server.Port)
	c.Server.Mode = envOr("HARVEST_MODE", c.Server.Mode)

	c.Browser.Headless = envBoolOr("HARVEST_HEADLESS", c.Browser.Headless)
	c.Browser.MaxPages = envIntOr("HARVEST_MAX_PAGES", c.Browser.MaxPages)
	c.Browser.DefaultProxy = envOr("HARVEST_PROXY", c.Browser.DefaultProxy)
	c.Browser.NoSandbox = envBoolOr("HARVEST_NO_SANDBOX", c.Browser.NoSandbox)
	c.Browser.BrowserBin = envOr("HARVEST_BROWSER_BIN", c.Browser.BrowserBin)
	c.Browser.Stealth = envBoolOr("HARVEST_STEALTH", c.Browser.Stealth)

	c.Scraper.PageTimeout = envDurationOr("HARVEST_PAGE_TIMEOUT", c.Scraper.PageTimeout)
	c.Scraper.NavigationTimeout = envDurationOr("HARVEST_NAV_TIMEOUT", c.Scraper.NavigationTimeout)
	c.Scraper.BlockedResourceTypes = envSliceOr("HARVEST_BLOCKED_RESOURCES", c.Scraper.BlockedResourceTypes)

	c.Harvest.ListingURL = envOr("HARVEST_LISTING_URL", c.Harvest.ListingURL)
	c.Harvest.Origin = envOr("HARVEST_ORIGIN", c.Harvest.Origin)
	c.Harvest.StallLimit = envIntOr("HARVEST_STALL_LIMIT", c.Harvest.StallLimit)
	c.Harvest.MaxScrolls = envIntOr("HARVEST_MAX_SCROLLS", c.Harvest.MaxScrolls)
	c.Harvest.JobTTL = envDurationOr("HARVEST_JOB_TTL", c.Harvest.JobTTL)

	c.Enrich.Concurrency = envIntOr("HARVEST_CONCURRENCY", c.Enrich.Concurrency)
	c.Enrich.DetailTimeout = envDurationOr("HARVEST_DETAIL_TIMEOUT", c.Enrich.DetailTimeout)

	c.Engine.EnableMultiEngine = envBoolOr("HARVEST_MULTI_ENGINE", c.Engine.EnableMultiEngine)
	c.Engine.HTTPTimeout = envDurationOr("HARVEST_HTTP_TIMEOUT", c.Engine.HTTPTimeout)
	c.Engine.MemoryTTL = envDurationOr("HARVEST_ENGINE_MEMORY_TTL", c.Engine.MemoryTTL)

	c.Auth.Enabled = envBoolOr("HARVEST_AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.APIKeys = envSliceOr("HARVEST_API_KEYS", c.Auth.APIKeys)

	c.RateLimit.RequestsPerSecond = envFloatOr("HARVEST_RATE_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = envIntOr("HARVEST_RATE_BURST", c.RateLimit.Burst)

	c.Log.Level = envOr("HARVEST_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("HARVEST_LOG_FORMAT", c.Log.Format)

	c.Webhook.Timeout = envDurationOr("HARVEST_WEBHOOK_TIMEOUT", c.Webhook.Timeout)
	c.Webhook.RetryDelays = envDurationSliceOr("HARVEST_WEBHOOK_RETRY_DELAYS", c.Webhook.RetryDelays)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
