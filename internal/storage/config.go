package storage

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"

	"github.com/vidyasagar/memesurf/internal/browser"
	"github.com/vidyasagar/memesurf/internal/feeds"
)

// AppName names the per-user config, data and state directories.
const AppName = "memesurf"

// EnvPrefix prefixes environment overrides, e.g. MEMESURF_ENDPOINT.
const EnvPrefix = "memesurf"

// Config holds memesurf user configuration.
type Config struct {
	Endpoint          string            `json:"endpoint" envconfig:"ENDPOINT"`
	DefaultCategory   string            `json:"default_category" envconfig:"CATEGORY"`
	Categories        []string          `json:"categories" envconfig:"CATEGORIES"`
	Fallbacks         map[string]string `json:"fallbacks" envconfig:"FALLBACKS"`
	MaxRetries        int               `json:"max_retries" envconfig:"MAX_RETRIES"`
	TimeoutSeconds    int               `json:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`
	RequestsPerSecond float64           `json:"requests_per_second" envconfig:"RPS"`
	HistoryLimit      int               `json:"history_limit" envconfig:"HISTORY_LIMIT"`
	Theme             string            `json:"theme" envconfig:"THEME"`
	LogLevel          string            `json:"log_level" envconfig:"LOG_LEVEL"`
	FetchOnStart      bool              `json:"fetch_on_start" envconfig:"FETCH_ON_START"`
	path              string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	categories := make([]string, len(feeds.DefaultCategories))
	copy(categories, feeds.DefaultCategories)

	return Config{
		Endpoint:        browser.DefaultEndpoint,
		DefaultCategory: browser.DefaultCategory,
		Categories:      categories,
		Fallbacks: map[string]string{
			"dankmemes":       "memes",
			"me_irl":          "memes",
			"meirl":           "memes",
			"wholesomememes":  "memes",
			"ProgrammerHumor": "memes",
			"AdviceAnimals":   "cursedcomments",
		},
		MaxRetries:        browser.DefaultMaxRetries,
		TimeoutSeconds:    15,
		RequestsPerSecond: 2,
		HistoryLimit:      500,
		Theme:             "dark",
		LogLevel:          "info",
		FetchOnStart:      true,
	}
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.json")
}

// DataDir returns the directory for the database and state files.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns the directory for logs.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// LoadConfig loads configuration from path (ConfigPath when empty), writing
// the defaults there on first run, then applies MEMESURF_* environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		// A fallbacks object in the file replaces the defaults instead of
		// merging into them.
		defaults := cfg.Fallbacks
		cfg.Fallbacks = nil
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if cfg.Fallbacks == nil {
			cfg.Fallbacks = defaults
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(c.path, data, 0o644)
}

// Path returns where the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FallbackTable returns the fallback configuration for the content fetcher.
func (c *Config) FallbackTable() browser.FallbackTable {
	t := make(browser.FallbackTable, len(c.Fallbacks))
	for from, to := range c.Fallbacks {
		t[from] = to
	}
	return t
}

func (c *Config) normalize() {
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	if name, ok := feeds.ParseSubreddit(c.DefaultCategory); ok {
		c.DefaultCategory = name
	}

	var cats []string
	for _, raw := range c.Categories {
		if name, ok := feeds.ParseSubreddit(raw); ok {
			cats = append(cats, name)
		}
	}
	c.Categories = cats
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Validate checks the configuration for values the fetcher cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint)
	}
	if _, ok := feeds.ParseSubreddit(c.DefaultCategory); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, c.DefaultCategory)
	}
	if c.MaxRetries < 1 {
		return ErrInvalidRetries
	}
	if c.TimeoutSeconds <= 0 {
		return ErrInvalidTimeout
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	if c.HistoryLimit < 0 {
		return ErrInvalidHistoryLimit
	}
	seen := make(map[string]string, len(c.Fallbacks))
	for from, to := range c.Fallbacks {
		if strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
			return fmt.Errorf("%w: %q", ErrSelfFallback, from)
		}
		folded := strings.ToLower(strings.TrimSpace(from))
		if other, ok := seen[folded]; ok {
			return fmt.Errorf("%w: %q and %q", ErrDuplicateFallback, other, from)
		}
		seen[folded] = from
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}
