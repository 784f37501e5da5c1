package embedding

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/zeebo/blake3"

	"github.com/doeshing/termind/internal/domain"
)

const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	trigramWeight = 0.25
)

// HashingEmbedder projects word unigrams, word bigrams and character
// trigrams into a fixed number of buckets with blake3 (signed feature
// hashing) and L2-normalizes the result. It is deterministic and offline.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder returns an embedder of the given width.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = domain.DefaultEmbeddingDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Name identifies the engine and its width; vectors from engines with a
// different name are not comparable.
func (e *HashingEmbedder) Name() string {
	return fmt.Sprintf("local:blake3-%d", e.dims)
}

// Embed implements ports.Embedder.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, e.dims)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		e.add(vec, "\x00empty", unigramWeight)
	}
	for i, tok := range tokens {
		e.add(vec, "w:"+tok, unigramWeight)
		if i > 0 {
			e.add(vec, "b:"+tokens[i-1]+" "+tok, bigramWeight)
		}
		padded := []rune("^" + tok + "$")
		for j := 0; j+3 <= len(padded); j++ {
			e.add(vec, "c:"+string(padded[j:j+3]), trigramWeight)
		}
	}
	return normalize(vec), nil
}

func (e *HashingEmbedder) add(vec []float64, feature string, weight float64) {
	sum := blake3.Sum256([]byte(feature))
	bucket := binary.LittleEndian.Uint32(sum[:4]) % uint32(e.dims)
	if sum[4]&1 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float64) []float32 {
	var mag float64
	for _, v := range vec {
		mag += v * v
	}
	out := make([]float32, len(vec))
	if mag == 0 {
		return out
	}
	mag = math.Sqrt(mag)
	for i, v := range vec {
		out[i] = float32(v / mag)
	}
	return out
}
