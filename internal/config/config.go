package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobby.
type Config struct {
	Name         string
	OutputDir    string
	Store        StoreConfig
	Schedule     string // cron spec used by `jobby start`
	Concurrency  int    // max providers fetched at once
	HTTPTimeout  time.Duration
	RateLimit    RateLimitConfig
	Filters      FilterConfig
	Notification NotificationConfig
	Providers    []ProviderEntry
}

// StoreConfig selects where snapshots are persisted.
type StoreConfig struct {
	Type      string        // "csv" or "sqlite"
	Path      string        // resolved against OutputDir
	Retention time.Duration // sqlite only; zero keeps every run
}

// RateLimitConfig controls the minimum gap between requests to one provider kind.
type RateLimitConfig struct {
	MinDelay time.Duration
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "slack" or "none"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// FilterConfig holds keyword and location filter settings.
type FilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
	Locations            []string `yaml:"locations"`
	ExcludeLocations     []string `yaml:"exclude_locations"`
}

// ProviderEntry is one configured provider instance: its kind, its instance
// key and the still-undecoded parameters for that kind's constructor.
type ProviderEntry struct {
	Kind   string
	Key    string
	Params *yaml.Node
}

const (
	defaultName     = "jobby"
	defaultSchedule = "@every 6h"
	slackPrefix     = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Name         string             `yaml:"name"`
	OutputDir    string             `yaml:"output_dir"`
	Store        rawStoreConfig     `yaml:"store"`
	Schedule     string             `yaml:"schedule"`
	Concurrency  *int               `yaml:"concurrency"`
	HTTP         rawHTTPConfig      `yaml:"http"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Filters      FilterConfig       `yaml:"filters"`
	Notification NotificationConfig `yaml:"notification"`
	Search       rawSearchConfig    `yaml:"search"`
}

type rawStoreConfig struct {
	Type      string `yaml:"type"`
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
}

type rawHTTPConfig struct {
	Timeout string `yaml:"timeout"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

type rawSearchConfig struct {
	// Providers is kept as a node so entry order survives decoding.
	Providers yaml.Node `yaml:"providers"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// Individual provider entries are not validated here; see provider.Build.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	httpTimeout, err := parseDuration("http.timeout", raw.HTTP.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("rate_limit.min_delay", raw.RateLimit.MinDelay, 0)
	if err != nil {
		return nil, err
	}
	retention, err := parseDuration("store.retention", raw.Store.Retention, 0)
	if err != nil {
		return nil, err
	}

	providers, err := providerEntries(&raw.Search.Providers)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Name:        raw.Name,
		OutputDir:   raw.OutputDir,
		Schedule:    raw.Schedule,
		Concurrency: 1,
		HTTPTimeout: httpTimeout,
		Store: StoreConfig{
			Type:      strings.ToLower(raw.Store.Type),
			Path:      raw.Store.Path,
			Retention: retention,
		},
		RateLimit:    RateLimitConfig{MinDelay: minDelay},
		Filters:      raw.Filters,
		Notification: raw.Notification,
		Providers:    providers,
	}
	if raw.Concurrency != nil {
		cfg.Concurrency = *raw.Concurrency
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// StorePath returns the snapshot location, resolved against OutputDir.
func (c *Config) StorePath() string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.OutputDir, c.Store.Path)
}

func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = defaultName
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "csv"
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Type {
		case "sqlite":
			cfg.Store.Path = "jobs.db"
		default:
			cfg.Store.Path = "jobs.csv"
		}
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

// providerEntries walks search.providers: a mapping of provider kind to a
// mapping of instance key to parameters. Document order is preserved.
func providerEntries(node *yaml.Node) ([]ProviderEntry, error) {
	if node.Kind == 0 || isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("search.providers must be a mapping of provider kind to instances (line %d)", node.Line)
	}

	var entries []ProviderEntry
	for i := 0; i+1 < len(node.Content); i += 2 {
		kind := node.Content[i].Value
		instances := node.Content[i+1]
		if isNull(instances) {
			continue
		}
		if instances.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("search.providers.%s must be a mapping of instance key to parameters (line %d)", kind, instances.Line)
		}
		for j := 0; j+1 < len(instances.Content); j += 2 {
			entries = append(entries, ProviderEntry{
				Kind:   kind,
				Key:    instances.Content[j].Value,
				Params: instances.Content[j+1],
			})
		}
	}
	return entries, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func validate(cfg *Config) error {
	switch cfg.Store.Type {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("store.type must be \"csv\" or \"sqlite\", got %q", cfg.Store.Type)
	}

	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTPTimeout)
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}
	if cfg.Store.Retention < 0 {
		return fmt.Errorf("store.retention must not be negative, got %v", cfg.Store.Retention)
	}

	switch cfg.Notification.Type {
	case "log", "none":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\", \"slack\" or \"none\", got %q", cfg.Notification.Type)
	}

	return nil
}
