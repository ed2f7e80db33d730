package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// TextGenerator is the single operation the analyst needs from a model
// backend. Kept this small so tests can substitute a stub.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// Client calls the Gemini API through the official SDK.
type Client struct {
	client  *genai.Client
	timeout time.Duration
	log     *slog.Logger
}

var _ TextGenerator = (*Client)(nil)

// NewClient builds a Gemini client from an API key.
func NewClient(ctx context.Context, apiKey string, timeout time.Duration, log *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{client: client, timeout: timeout, log: log}, nil
}

// GenerateText sends one prompt and returns the raw text response.
// Transient failures (429/5xx) are retried with backoff; every attempt
// runs under the per-call timeout so a hung call cannot stall a cycle.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * 5 * time.Second
			c.log.Debug("retrying gemini request",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", delay),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := c.client.Models.GenerateContent(callCtx, model, genai.Text(prompt), nil)
		cancel()
		if err == nil {
			text, textErr := result.Text()
			if textErr != nil {
				return "", fmt.Errorf("get text from result: %w", textErr)
			}
			return text, nil
		}

		lastErr = err
		if !isRetryable(err.Error()) {
			return "", fmt.Errorf("generate content: %w", err)
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isRetryable(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, marker := range []string{
		"429", "rate limit", "too many requests", "resource exhausted",
		"500", "502", "503", "504", "unavailable", "overloaded",
		"deadline exceeded",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
