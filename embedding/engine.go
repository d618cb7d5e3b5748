// Package embedding defines the embedding engine used by the memory stores
// to derive document vectors, plus two implementations: an OpenAI-backed
// engine and a deterministic local hashing engine for offline use and tests.
package embedding

import "context"

// Engine generates vector embeddings for text. The memory stores call it at
// document-add time and at query time; implementations must be safe for
// concurrent use.
type Engine interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of produced embeddings.
	Dimensions() int
}
