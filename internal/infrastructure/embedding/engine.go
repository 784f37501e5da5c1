// Package embedding turns request text into vectors for similarity search.
// The local hashing engine needs no network; Ollama, OpenAI and Gemini
// engines call out to their services.
package embedding

import (
	"fmt"
	"math"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/infrastructure/cache"
	"github.com/doeshing/termind/internal/ports"
)

// NewEngine builds the embedder named by settings. When settings.Cache is set
// and store is non-nil, remote engines are wrapped with the disk cache.
func NewEngine(settings domain.EmbeddingSettings, store *cache.FileCache, logger ports.Logger) (ports.Embedder, error) {
	var (
		engine ports.Embedder
		err    error
	)
	switch domain.NormalizeEmbeddingProvider(settings.Provider) {
	case "local":
		return NewHashingEmbedder(settings.Dimensions), nil
	case "ollama":
		engine = NewOllamaEngine(settings.Endpoint, settings.Model)
	case "openai":
		engine, err = NewOpenAIEngine(resolveKey(settings, "OPENAI_API_KEY"), settings.Endpoint, settings.Model, settings.Dimensions)
	case "gemini":
		engine, err = NewGenAIEngine(resolveKey(settings, "GEMINI_API_KEY"), settings.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use local, ollama, openai or gemini)", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	if settings.Cache && store != nil {
		engine = NewCachedEmbedder(engine, store, logger)
	}
	return engine, nil
}

func resolveKey(settings domain.EmbeddingSettings, fallbackEnv string) string {
	env := settings.APIKeyEnv
	if env == "" {
		env = fallbackEnv
	}
	return domain.ProviderSettings{APIKeyEnv: env}.ResolveAPIKey()
}

// CosineDistance returns 1 - cosine similarity. Vectors of different length
// cannot be compared; a zero vector is maximally distant from everything.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}
	var dot, aMag, bMag float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		aMag += x * x
		bMag += y * y
	}
	if aMag == 0 || bMag == 0 {
		return 1, nil
	}
	sim := dot / (math.Sqrt(aMag) * math.Sqrt(bMag))
	// clamp rounding drift
	sim = math.Max(-1, math.Min(1, sim))
	return 1 - sim, nil
}

var (
	_ ports.Embedder = (*HashingEmbedder)(nil)
	_ ports.Embedder = (*OllamaEngine)(nil)
	_ ports.Embedder = (*OpenAIEngine)(nil)
	_ ports.Embedder = (*GenAIEngine)(nil)
	_ ports.Embedder = (*CachedEmbedder)(nil)
)
