// Package anthropic adapts the Anthropic Messages API to the Synthesizer
// interface.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Options configure the Anthropic synthesizer (model id, API key).
type Options struct {
	Model  anthropic.Model
	APIKey string
}

// Synthesizer wraps the Anthropic Messages API.
type Synthesizer struct {
	client *anthropic.Client
	opts   Options
}

// New creates a synthesizer using a fresh client. An empty APIKey falls back
// to the SDK's environment lookup.
func New(optFns ...func(o *Options)) *Synthesizer {
	opts := Options{
		Model: anthropic.ModelClaude3_5Sonnet20241022,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Synthesizer{client: &client, opts: opts}
}

// NewFromClient creates a synthesizer from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Synthesizer {
	opts := Options{
		Model: anthropic.ModelClaude3_5Sonnet20241022,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Synthesizer{client: client, opts: opts}
}

// Complete runs one message turn and returns the concatenated text blocks.
func (s *Synthesizer) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int64) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       s.opts.Model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic api returned no text content")
	}
	return b.String(), nil
}
