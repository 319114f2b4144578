// Package assistant talks to the Gemini API on behalf of the room assistant.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned by NewGeminiCompleter when the key is empty.
var ErrNoAPIKey = errors.New("assistant: api key is not configured")

// Generator is the subset of the genai models service the completer uses.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options tunes a GeminiCompleter.
type Options struct {
	Model   string
	Timeout time.Duration
	// RatePerSecond caps outgoing requests; bursts of one are allowed.
	RatePerSecond float64
}

// GeminiCompleter answers questions with a single non-streaming Gemini call.
type GeminiCompleter struct {
	generator Generator
	model     string
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewGeminiCompleter builds a completer backed by the Gemini API.
func NewGeminiCompleter(ctx context.Context, apiKey string, opts Options) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: create client: %w", err)
	}
	return NewCompleter(client.Models, opts), nil
}

// NewCompleter wraps an arbitrary generator.
func NewCompleter(generator Generator, opts Options) *GeminiCompleter {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &GeminiCompleter{
		generator: generator,
		model:     opts.Model,
		timeout:   opts.Timeout,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Complete waits for a rate limiter slot, then asks the model question with
// systemPrompt as instructions. Thinking is disabled to keep replies fast.
func (c *GeminiCompleter) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("assistant: rate limited: %w", err)
	}

	resp, err := c.generator.GenerateContent(ctx, c.model, genai.Text(question), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr[int32](0),
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant: generate content: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}
