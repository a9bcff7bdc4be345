package llm

import (
	"context"
	"fmt"
	"time"
)

// Client is a chat-style completion backend.
// Implementations never retry; cancellation of ctx aborts the outstanding call.
type Client interface {
	// Complete sends the system and user turns and returns the full text reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// CompleteStream is Complete with incremental delivery. onChunk sees every text
	// delta in order; the concatenation is returned. A non-nil error from onChunk
	// stops the stream.
	CompleteStream(ctx context.Context, systemPrompt, userPrompt string, onChunk func(string) error) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderStatic:
		return nil, fmt.Errorf("static provider needs a canned response; use NewStaticClient")
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", config.Provider)
	}
}

// withTimeout applies the adapter's configured call deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
