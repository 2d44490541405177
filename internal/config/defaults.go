package config

import "time"

const (
	DefaultOpenRouterModel = "kwaipilot/kat-coder-pro:free"
	DefaultGeminiModel     = "gemini-flash-lite-latest"

	DefaultMaxDiffLines     = 200
	DefaultMinMessageLength = 20
	DefaultMaxRetries       = 3
	DefaultHistoryCount     = 10
	DefaultMaxRetryWait     = 10 * time.Second
	DefaultLogLevel         = "info"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:         ProviderOpenRouter,
		Emoji:            true,
		MaxDiffLines:     DefaultMaxDiffLines,
		MinMessageLength: DefaultMinMessageLength,
		MaxRetries:       DefaultMaxRetries,
		MaxRetryWait:     DefaultMaxRetryWait,
		HistoryCount:     DefaultHistoryCount,
		LogLevel:         DefaultLogLevel,
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	if p == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenRouterModel
}
