package embedding

import (
	"context"

	"github.com/doeshing/termind/internal/infrastructure/cache"
	"github.com/doeshing/termind/internal/ports"
)

// CachedEmbedder serves repeated texts from a disk cache.
type CachedEmbedder struct {
	inner  ports.Embedder
	cache  *cache.FileCache
	logger ports.Logger
}

// NewCachedEmbedder wraps inner with store.
func NewCachedEmbedder(inner ports.Embedder, store *cache.FileCache, logger ports.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: store, logger: logger}
}

// Name is the wrapped engine's name; caching does not change the vectors.
func (c *CachedEmbedder) Name() string {
	return c.inner.Name()
}

// Embed implements ports.Embedder. Cache failures fall through to the engine.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(c.inner.Name(), text)
	if vec, ok, err := c.cache.Get(key); err == nil && ok {
		return vec, nil
	} else if err != nil {
		c.debug("embedding cache read failed", err)
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(key, c.inner.Name(), vec); err != nil {
		c.debug("embedding cache write failed", err)
	}
	return vec, nil
}

func (c *CachedEmbedder) debug(msg string, err error) {
	if c.logger != nil {
		c.logger.Debug(msg, map[string]interface{}{"error": err.Error(), "dir": c.cache.Dir()})
	}
}
