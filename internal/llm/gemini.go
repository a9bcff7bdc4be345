package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// model builds a per-call model handle so no state is shared between requests.
func (c *GeminiClient) model(systemPrompt string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(c.config.Temperature)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}
	return model
}

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	callCtx, cancel := withTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.model(systemPrompt).GenerateContent(callCtx, genai.Text(userPrompt))
	if err != nil {
		return "", classifyCallError(callCtx, err)
	}

	text := extractTextFromResponse(resp)
	if strings.TrimSpace(text) == "" {
		return "", emptyResponse("no text in completion")
	}
	return text, nil
}

// CompleteStream implements Client.
func (c *GeminiClient) CompleteStream(ctx context.Context, systemPrompt, userPrompt string, onChunk func(string) error) (string, error) {
	callCtx, cancel := withTimeout(ctx, c.config.Timeout)
	defer cancel()

	iter := c.model(systemPrompt).GenerateContentStream(callCtx, genai.Text(userPrompt))

	var sb strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", classifyCallError(callCtx, err)
		}

		chunk := extractTextFromResponse(resp)
		if chunk == "" {
			continue
		}
		sb.WriteString(chunk)
		if onChunk != nil {
			if err := onChunk(chunk); err != nil {
				return "", fmt.Errorf("stream consumer: %w", err)
			}
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", emptyResponse("no text in streamed completion")
	}
	return text, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse joins the text parts of the first candidate.
func extractTextFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
