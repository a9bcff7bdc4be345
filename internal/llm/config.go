// Package llm provides the completion backend abstraction used by plan generation.
// Backends are chat-style: a system turn and a user turn in, text out.
package llm

import (
	"fmt"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderStatic replays a fixed response; used for dry runs and tests
	ProviderStatic Provider = "static"
)

// Defaults for the Gemini provider
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.4
	DefaultTimeout     = 90 * time.Second
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
	// Timeout bounds a single backend call. Zero disables the adapter's own deadline.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderStatic:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.Provider)
	}
	if c.Provider == ProviderGemini && c.Model == "" {
		return fmt.Errorf("llm model is required for provider %s", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("llm timeout must not be negative")
	}
	return nil
}

// WithModel returns a copy of the config using model.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}
