// Package config loads the loaderspot configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var (
	// ErrLedgerURLNotSet is returned when a command needs the ledger URL
	// and neither the config file nor the flag provides one.
	ErrLedgerURLNotSet = errors.New("ledger url is not configured")
	// ErrWebhookURLNotSet is returned when a notification is requested
	// without a webhook endpoint configured.
	ErrWebhookURLNotSet = errors.New("webhook url is not configured")
	// ErrDispatchNotConfigured is returned when a repository dispatch is
	// requested without repository and token configured.
	ErrDispatchNotConfigured = errors.New("dispatch repository or token is not configured")
)

// Config represents the application configuration
type Config struct {
	Ledger   LedgerConfig   `toml:"ledger"`
	Webhook  WebhookConfig  `toml:"webhook"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Probe    ProbeConfig    `toml:"probe"`
	Retry    RetryConfig    `toml:"retry"`
}

// LedgerConfig holds the version ledger settings
type LedgerConfig struct {
	// URL of the published ledger JSON
	URL string `toml:"url"`
	// Field selects how entries carry the version: "fullversion"
	// (object with a fullversion field) or "direct" (bare string)
	Field string `toml:"field"`
}

// WebhookConfig holds the notification endpoint settings
type WebhookConfig struct {
	URL string `toml:"url"`
	// FormURL is the optional Google Form endpoint for submissions
	FormURL string `toml:"form_url"`
	// FormVersionEntry and FormCommentEntry are the form field IDs
	FormVersionEntry string `toml:"form_version_entry"`
	FormCommentEntry string `toml:"form_comment_entry"`
}

// DispatchConfig holds the repository-dispatch settings
type DispatchConfig struct {
	// Repository in "owner/name" form
	Repository string `toml:"repository"`
	// Token may reference an environment variable as ${VAR}
	Token string `toml:"token"`
}

// ProbeConfig holds the CDN sweep limits
type ProbeConfig struct {
	Connections  int     `toml:"connections"`
	RangeStart   int     `toml:"range_start"`
	RangeEnd     int     `toml:"range_end"`
	LadderPasses int     `toml:"ladder_passes"`
	LadderStep   int     `toml:"ladder_step"`
	RPS          float64 `toml:"rps"`
}

// RetryConfig holds the HTTP retry knobs
type RetryConfig struct {
	MaxRetries  int `toml:"max_retries"`
	BaseDelayMS int `toml:"base_delay_ms"`
	MaxDelayMS  int `toml:"max_delay_ms"`
	TimeoutSecs int `toml:"timeout_secs"`
}

// Default returns a config with the built-in defaults.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Field: "fullversion",
		},
		Webhook: WebhookConfig{
			FormVersionEntry: "entry.1104502920",
			FormCommentEntry: "entry.1319854718",
		},
		Probe: ProbeConfig{
			Connections:  100,
			RangeStart:   0,
			RangeEnd:     1000,
			LadderPasses: 10,
			LadderStep:   1000,
		},
		Retry: RetryConfig{
			MaxRetries:  3,
			BaseDelayMS: 1000,
			MaxDelayMS:  4000,
			TimeoutSecs: 30,
		},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/loaderspot/config.toml (XDG standard - priority)
// 2. ~/.loaderspot/config.toml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "loaderspot", "config.toml"),
		filepath.Join(home, ".loaderspot", "config.toml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	// No config exists, return default (XDG) path for creation
	return paths[0], nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path. A missing
// file yields the defaults and writes them out for the user to edit.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to the default config file
func (c *Config) Save() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// LedgerURL returns the configured ledger URL.
func (c *Config) LedgerURL() (string, error) {
	if c.Ledger.URL == "" {
		return "", ErrLedgerURLNotSet
	}
	return c.Ledger.URL, nil
}

// WebhookURL returns the configured webhook endpoint.
func (c *Config) WebhookURL() (string, error) {
	if c.Webhook.URL == "" {
		return "", ErrWebhookURLNotSet
	}
	return c.Webhook.URL, nil
}

// DispatchTarget returns the repository and resolved token for a
// repository dispatch. The token value may reference an environment
// variable as ${VAR}.
func (c *Config) DispatchTarget() (repo, token string, err error) {
	if c.Dispatch.Repository == "" || c.Dispatch.Token == "" {
		return "", "", ErrDispatchNotConfigured
	}
	token = os.Expand(c.Dispatch.Token, os.Getenv)
	if token == "" {
		return "", "", ErrDispatchNotConfigured
	}
	return c.Dispatch.Repository, token, nil
}
