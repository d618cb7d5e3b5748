package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// defaultHashDimensions keeps the hashed bag-of-tokens vectors small; recall
// quality is secondary to determinism for this engine.
const defaultHashDimensions = 256

// HashEngine is a deterministic local embedding engine. It hashes each token
// into a fixed-size bag-of-tokens vector and L2-normalizes the result, so
// cosine similarity degrades to token overlap. It needs no network access
// and always produces the same vector for the same text, which makes it the
// default for tests and offline runs.
type HashEngine struct {
	dims int
}

// NewHashEngine creates a hashing engine with the default dimensionality.
func NewHashEngine() *HashEngine {
	return &HashEngine{dims: defaultHashDimensions}
}

// Embed implements Engine.
func (e *HashEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dims]++
	}
	normalize(vec)
	return vec, nil
}

// EmbedBatch implements Engine.
func (e *HashEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions implements Engine.
func (e *HashEngine) Dimensions() int { return e.dims }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// Cosine computes the cosine similarity of two equal-length vectors. It
// returns 0 for mismatched lengths or zero vectors.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
