package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Rule limits requests to one endpoint.
type Rule struct {
	Name   string        // Bucket namespace; requests matching the same rule share a bucket
	Path   string        // Exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // Requests per window; zero or less means unlimited
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // Buckets unused for this long are dropped
	Allowlist       map[string]bool
	Denylist        map[string]bool
	Rules           []Rule
}

// Settings are the user-facing knobs, usually read from the rate_limit config section.
type Settings struct {
	Enabled        bool
	GenerateLimit  int
	GenerateWindow time.Duration
	DefaultLimit   int
	DefaultWindow  time.Duration
	Allowlist      []string
	Denylist       []string
}

// NewConfig builds a limiter configuration. Plan generation calls the
// completion backend and gets its own, stricter budget shared by the blocking
// and streaming endpoints.
func NewConfig(s Settings) *Config {
	return &Config{
		Enabled:         s.Enabled,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Allowlist:       toSet(s.Allowlist),
		Denylist:        toSet(s.Denylist),
		Rules:           GenerateRules(s.GenerateLimit, s.GenerateWindow),
	}
}

// GenerateRules returns the rules for the plan generation endpoints.
func GenerateRules(limit int, window time.Duration) []Rule {
	burst := max(1, limit/5)
	return []Rule{
		{Name: "generate", Path: "/plans", Method: http.MethodPost, Limit: limit, Window: window, Burst: burst},
		{Name: "generate", Path: "/plans/stream", Method: http.MethodPost, Limit: limit, Window: window, Burst: burst},
		{Name: "health", Path: "/health", Method: http.MethodGet, Limit: 0},
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = true
		}
	}
	return set
}
