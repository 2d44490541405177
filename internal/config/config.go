// Package config resolves cm settings from defaults, an optional YAML file,
// and the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/cm/internal/constants"
	"gopkg.in/yaml.v3"
)

// Provider names a text-generation backend.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

// ErrMissingAPIKey is returned when the selected provider has no credential.
var ErrMissingAPIKey = errors.New("missing API key")

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

type Config struct {
	Provider         Provider      `yaml:"provider"`
	Model            string        `yaml:"model,omitempty"`
	LogLevel         string        `yaml:"log_level,omitempty"`
	OpenRouterAPIKey string        `yaml:"openrouter_api_key,omitempty"`
	GoogleAPIKey     string        `yaml:"google_api_key,omitempty"`
	MaxRetryWait     time.Duration `yaml:"max_retry_wait"`
	MaxDiffLines     int           `yaml:"max_diff_lines"`
	MinMessageLength int           `yaml:"min_message_length"`
	HistoryCount     int           `yaml:"history_count"`
	MaxRetries       uint          `yaml:"max_retries"`
	Emoji            bool          `yaml:"emoji"`
}

// Load builds a Config from defaults, the YAML file at path (skipped when it
// does not exist) and the environment. The result is not validated; callers
// apply their own overrides first and then call Validate.
func Load(fs afero.Fs, path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to check config file %s: %w", path, err)
		}
		if exists {
			if err := cfg.loadFile(fs, path); err != nil {
				return nil, err
			}
		}
	}

	if lookup != nil {
		cfg.ApplyEnv(lookup)
	}

	return cfg, nil
}

// LoadFromYAML overlays YAML bytes onto the defaults - helper for tests
func LoadFromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables. Unparseable numbers are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if v, ok := lookup(constants.EnvProvider); ok && v != "" {
		c.Provider = Provider(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(constants.EnvModel); ok && v != "" {
		c.Model = v
	}
	if v, ok := lookup(constants.EnvEmoji); ok {
		c.Emoji = v != "0" && !strings.EqualFold(v, "false")
	}
	if v, ok := lookup(constants.EnvMaxDiffLines); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxDiffLines = n
		}
	}
	if v, ok := lookup(constants.EnvMinLength); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MinMessageLength = n
		}
	}
	if v, ok := lookup(constants.EnvMaxRetries); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			c.MaxRetries = uint(n)
		}
	}
	if v, ok := lookup(constants.EnvOpenRouter); ok && v != "" {
		c.OpenRouterAPIKey = v
	}
	if v, ok := lookup(constants.EnvGoogle); ok && v != "" {
		c.GoogleAPIKey = v
	}
}

// ResolvedModel returns the configured model or the provider's default.
func (c *Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}

// APIKey returns the credential for the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GoogleAPIKey
	default:
		return c.OpenRouterAPIKey
	}
}

// Validate checks the provider name, credential and numeric limits.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("%w: set %s", ErrMissingAPIKey, constants.EnvOpenRouter)
		}
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("%w: set %s", ErrMissingAPIKey, constants.EnvGoogle)
		}
	default:
		return fmt.Errorf("invalid provider '%s': use 'openrouter' or 'gemini'", c.Provider)
	}

	if c.MaxRetries == 0 {
		return errors.New("max_retries must be at least 1")
	}
	if c.MaxDiffLines <= 0 {
		return errors.New("max_diff_lines must be positive")
	}
	if c.MaxRetryWait < 0 {
		return errors.New("max_retry_wait cannot be negative")
	}
	return nil
}
