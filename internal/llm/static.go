package llm

import (
	"context"
	"fmt"
	"sync"
)

// StaticCall records one request seen by a StaticClient.
type StaticCall struct {
	SystemPrompt string
	UserPrompt   string
	Streaming    bool
}

// StaticClient is a deterministic Client that replays a canned response.
// It is safe for concurrent use.
type StaticClient struct {
	response  string
	err       error
	chunkSize int

	mu    sync.Mutex
	calls []StaticCall
}

// NewStaticClient returns a client that answers every request with response.
func NewStaticClient(response string) *StaticClient {
	return &StaticClient{response: response, chunkSize: 64}
}

// NewFailingClient returns a client that fails every request with err.
func NewFailingClient(err error) *StaticClient {
	return &StaticClient{err: err, chunkSize: 64}
}

// WithChunkSize sets the streamed chunk size in bytes.
func (c *StaticClient) WithChunkSize(n int) *StaticClient {
	if n > 0 {
		c.chunkSize = n
	}
	return c
}

// Calls returns a copy of the requests received so far.
func (c *StaticClient) Calls() []StaticCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StaticCall, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *StaticClient) record(call StaticCall) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

// Complete implements Client.
func (c *StaticClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.record(StaticCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	if err := ctx.Err(); err != nil {
		return "", classifyCallError(ctx, err)
	}
	if c.err != nil {
		return "", c.err
	}
	if c.response == "" {
		return "", emptyResponse("static response is empty")
	}
	return c.response, nil
}

// CompleteStream implements Client.
func (c *StaticClient) CompleteStream(ctx context.Context, systemPrompt, userPrompt string, onChunk func(string) error) (string, error) {
	c.record(StaticCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Streaming: true})
	if c.err != nil {
		return "", c.err
	}
	if c.response == "" {
		return "", emptyResponse("static response is empty")
	}

	for start := 0; start < len(c.response); start += c.chunkSize {
		if err := ctx.Err(); err != nil {
			return "", classifyCallError(ctx, err)
		}
		end := min(start+c.chunkSize, len(c.response))
		if onChunk != nil {
			if err := onChunk(c.response[start:end]); err != nil {
				return "", fmt.Errorf("stream consumer: %w", err)
			}
		}
	}
	return c.response, nil
}

// Close implements Client.
func (c *StaticClient) Close() error {
	return nil
}
