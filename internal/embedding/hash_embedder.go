package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"regexp"
	"strings"

	"github.com/hyperjump/erabu/pkg/utils"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// HashEmbedder is a deterministic embedder that maps tokens into a
// fixed-dimension vector by hashing. It has no external dependencies and
// produces identical vectors for identical text, which makes relevance
// reproducible across processes and machines.
type HashEmbedder struct {
	dims      int
	precision int
}

// NewHashEmbedder creates a hash embedder with the given vector length and
// rounding precision.
func NewHashEmbedder(dims, precision int) *HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	if precision <= 0 {
		precision = 6
	}
	return &HashEmbedder{dims: dims, precision: precision}
}

// Dimensions returns the configured vector length.
func (h *HashEmbedder) Dimensions() int { return h.dims }

// Embed tokenizes text, accumulates a signed count per hashed slot, then
// L2-normalizes and rounds each component. Empty or tokenless text yields
// the zero vector.
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, h.dims)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		digest := sha256.Sum256([]byte(tok))
		slot := int(binary.BigEndian.Uint32(digest[:4]) % uint32(h.dims))
		sign := 1.0
		if digest[4]%2 == 1 {
			sign = -1.0
		}
		vec[slot] += sign
	}
	utils.NormalizeL2(vec)
	for i := range vec {
		vec[i] = utils.RoundAt(vec[i], h.precision)
	}
	return vec, nil
}
