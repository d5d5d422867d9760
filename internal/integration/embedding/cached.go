package embedding

import (
	"context"
	"time"

	"github.com/futig/virtual-ta/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Embedder is the contract shared by all embedding connectors
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]entity.Vector, error)
	Model() string
}

// CachedEmbedder memoises vectors per text. Embeddings are deterministic for a
// fixed model, so repeated student questions skip the provider round trip.
type CachedEmbedder struct {
	next  Embedder
	cache *gocache.Cache
}

func NewCachedEmbedder(next Embedder, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([]entity.Vector, error) {
	vectors := make([]entity.Vector, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if v, ok := c.cache.Get(text); ok {
			vectors[i] = v.(entity.Vector)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		ctxzap.Debug(ctx, "embedding cache hit", zap.Int("count", len(texts)))
		return vectors, nil
	}

	fresh, err := c.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}

	for j, v := range fresh {
		vectors[missingIdx[j]] = v
		c.cache.SetDefault(missing[j], v)
	}

	return vectors, nil
}

func (c *CachedEmbedder) Model() string {
	return c.next.Model()
}
