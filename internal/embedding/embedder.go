// Package embedding provides the embedding model contract, a deterministic
// hash-based embedder, and content hashing for vector cache keys.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the vector length this embedder produces.
	Dimensions() int
}

// ModelSpec identifies an embedding model and its scoring parameters.
type ModelSpec struct {
	Provider       string
	Model          string
	Version        string
	Dims           int
	Precision      int
	CandidateLimit int
}

// ModelID returns the cache namespace for this model. Vectors from different
// providers, models, or versions never mix.
func (m ModelSpec) ModelID() string {
	return fmt.Sprintf("%s/%s@%s", m.Provider, m.Model, m.Version)
}

// ContentHash derives the stable cache key for a chunk's text at its
// position. Any change to the text or its location produces a new key.
func ContentHash(documentID string, pageNumber, chunkIndex int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%s", documentID, pageNumber, chunkIndex, text)))
	return hex.EncodeToString(sum[:])
}

// IsZero reports whether every component of v is zero. A zero query vector
// disables semantic scoring for that call instead of failing it.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
