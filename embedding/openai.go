package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// OpenAIOptions configure the OpenAI embedding engine.
type OpenAIOptions struct {
	Model      openai.EmbeddingModel
	Dimensions int
}

// OpenAIEngine generates embeddings through the OpenAI Embeddings API using
// the official client.
type OpenAIEngine struct {
	client *openai.Client
	opts   OpenAIOptions
}

// NewOpenAIEngine creates an engine with a client configured from the
// environment.
func NewOpenAIEngine(optFns ...func(o *OpenAIOptions)) *OpenAIEngine {
	client := openai.NewClient()
	return NewOpenAIEngineFromClient(&client, optFns...)
}

// NewOpenAIEngineFromClient creates an engine from an existing client.
func NewOpenAIEngineFromClient(client *openai.Client, optFns ...func(o *OpenAIOptions)) *OpenAIEngine {
	opts := OpenAIOptions{
		Model:      openai.EmbeddingModelTextEmbedding3Small,
		Dimensions: 1536,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenAIEngine{client: client, opts: opts}
}

// Embed implements Engine.
func (e *OpenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch implements Engine.
func (e *OpenAIEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: e.opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings error: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions implements Engine.
func (e *OpenAIEngine) Dimensions() int { return e.opts.Dimensions }
