// Package config loads service configuration from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/fitplan/internal/enrich"
	"github.com/jonathan/fitplan/internal/llm"
)

// EnvPrefix is prepended to every environment variable, e.g. FITPLAN_SERVER_PORT.
const EnvPrefix = "FITPLAN"

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverNone     = "none"
)

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and locates the storage backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
	Name   string `mapstructure:"name"` // MongoDB database name
}

// LLMConfig configures the completion backend.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PlannerConfig tunes catalog hints and enrichment.
type PlannerConfig struct {
	CatalogHints      int    `mapstructure:"catalog_hints"`
	EnrichLimit       int    `mapstructure:"enrich_limit"`
	EnrichConcurrency int    `mapstructure:"enrich_concurrency"`
	MatchPolicy       string `mapstructure:"match_policy"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimitConfig configures per-client request limits.
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	GenerateLimit  int           `mapstructure:"generate_limit"`
	GenerateWindow time.Duration `mapstructure:"generate_window"`
	DefaultLimit   int           `mapstructure:"default_limit"`
	DefaultWindow  time.Duration `mapstructure:"default_window"`
	Allowlist      []string      `mapstructure:"allowlist"`
	Denylist       []string      `mapstructure:"denylist"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.shutdown_timeout", "20s")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.name", "fitplan")

	v.SetDefault("llm.provider", string(llm.ProviderGemini))
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", llm.DefaultTemperature)
	v.SetDefault("llm.timeout", llm.DefaultTimeout.String())

	v.SetDefault("planner.catalog_hints", 0)
	v.SetDefault("planner.enrich_limit", enrich.DefaultLimit)
	v.SetDefault("planner.enrich_concurrency", enrich.DefaultConcurrency)
	v.SetDefault("planner.match_policy", string(enrich.MatchFirst))

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", 24)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.generate_limit", 5)
	v.SetDefault("rate_limit.generate_window", "1m")
	v.SetDefault("rate_limit.default_limit", 120)
	v.SetDefault("rate_limit.default_window", "1m")
	v.SetDefault("rate_limit.allowlist", []string{})
	v.SetDefault("rate_limit.denylist", []string{})
}

// Load reads configuration. When path is empty, fitplan.yaml is looked up in the
// working directory and ./config; a missing file is not an error. Environment
// variables (FITPLAN_SECTION_KEY) override the file. The unprefixed
// DATABASE_URL, GEMINI_API_KEY and JWT_SECRET are honored as fallbacks.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fitplan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, fallback := range map[string]string{
		"database.url": "DATABASE_URL",
		"llm.api_key":  "GEMINI_API_KEY",
		"jwt.secret":   "JWT_SECRET",
	} {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, fallback); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Secrets needed only by some commands are checked where they are used.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be within 1-65535, got %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverMongo, DriverNone:
	default:
		return fmt.Errorf("config error: 'database.driver' must be one of postgres, mongo, none, got %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverMongo && c.Database.Name == "" {
		return fmt.Errorf("config error: 'database.name' is required for mongo")
	}

	if err := c.LLMClientConfig().Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Planner.CatalogHints < 0 {
		return fmt.Errorf("config error: 'planner.catalog_hints' must be non-negative")
	}
	if c.Planner.EnrichLimit < 1 {
		return fmt.Errorf("config error: 'planner.enrich_limit' must be at least 1")
	}
	if c.Planner.EnrichConcurrency < 1 {
		return fmt.Errorf("config error: 'planner.enrich_concurrency' must be at least 1")
	}
	if _, err := enrich.ParseMatchPolicy(c.Planner.MatchPolicy); err != nil {
		return fmt.Errorf("config error: 'planner.match_policy': %w", err)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.GenerateLimit < 1 || c.RateLimit.DefaultLimit < 1 {
			return fmt.Errorf("config error: rate limits must be at least 1")
		}
		if c.RateLimit.GenerateWindow <= 0 || c.RateLimit.DefaultWindow <= 0 {
			return fmt.Errorf("config error: rate limit windows must be positive")
		}
	}
	return nil
}

// LLMClientConfig converts the llm section for llm.NewClient.
func (c *Config) LLMClientConfig() *llm.Config {
	return &llm.Config{
		Provider:    llm.Provider(c.LLM.Provider),
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		Timeout:     c.LLM.Timeout,
	}
}

// EnrichOptions converts the planner section for enrich.New.
func (c *Config) EnrichOptions() enrich.Options {
	policy, _ := enrich.ParseMatchPolicy(c.Planner.MatchPolicy)
	return enrich.Options{
		Limit:       c.Planner.EnrichLimit,
		Concurrency: c.Planner.EnrichConcurrency,
		Policy:      policy,
	}
}
