// In file: internal/llm/helpers.go

// Package llm contains everything that talks to a language model or an embedding
// model: the LLMClient interface and its provider implementations, embedders, and
// the retrieval corpus used for document question answering.
package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
)

// This file contains stateless utility functions used across the llm package.

// GenerateCacheKey creates a stable, fixed-length SHA256 hash of a string.
func GenerateCacheKey(text string) string {
	hasher := sha256.New()
	hasher.Write([]byte(text))
	return hex.EncodeToString(hasher.Sum(nil))
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is zero or their lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
