// Package openai adapts the OpenAI Chat Completions API to the Synthesizer
// interface. Only the non-streaming path is used; workers need one complete
// block of text per call.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// Options configure the OpenAI synthesizer. Fields mirror a minimal subset
// of Chat Completion parameters; extend via functional options without
// breaking callers.
type Options struct {
	Model string
}

// Synthesizer wraps the OpenAI Chat Completions API.
type Synthesizer struct {
	client *openai.Client
	opts   Options
}

// New creates a synthesizer using the default client, which reads the API
// key from the environment.
func New(optFns ...func(o *Options)) *Synthesizer {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a synthesizer from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Synthesizer {
	opts := Options{
		Model: openai.ChatModelGPT4oMini,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Synthesizer{client: client, opts: opts}
}

// Complete runs one chat completion and returns the assistant text.
func (s *Synthesizer) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: s.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
