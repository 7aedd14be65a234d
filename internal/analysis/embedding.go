package analysis

import (
	"context"
	"math"
	"strings"

	"github.com/harborlabs/docvault/internal/domain"
)

// Embedder generates deterministic hash-style pseudo-embeddings. It
// stands in for a model-backed vector service: identical texts always
// produce identical vectors and syntactically similar texts tend toward
// higher similarity, but there is no semantic understanding. It
// implements the same client interface as the OpenAI adapter so a real
// model can be swapped in without touching callers.
type Embedder struct{}

// NewEmbedder creates a new Embedder instance
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// GenerateEmbedding implements the embedding client interface. It never
// fails and ignores the context; both exist only for interface parity
// with networked embedders.
func (e *Embedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	return Embed(text), nil
}

// Embed produces a 384-dimensional L2-normalized vector for the text.
// Each character of each lowercased whitespace token accumulates
// sin(code * (tokenIndex+1)) * 0.1 into the slot code mod 384. Empty
// text yields the zero vector.
func Embed(text string) []float32 {
	acc := make([]float64, domain.EmbeddingDimensions)

	words := strings.Fields(strings.ToLower(text))
	for i, word := range words {
		for _, r := range word {
			code := int(r)
			acc[code%domain.EmbeddingDimensions] += math.Sin(float64(code)*float64(i+1)) * 0.1
		}
	}

	var sumSquares float64
	for _, v := range acc {
		sumSquares += v * v
	}
	magnitude := math.Sqrt(sumSquares)

	vec := make([]float32, domain.EmbeddingDimensions)
	if magnitude == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / magnitude)
	}
	return vec
}

// CosineSimilarity returns the cosine similarity of two vectors. It
// returns 0 on mismatched dimensionality (a corrupted stored vector,
// not a fatal condition) and 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
