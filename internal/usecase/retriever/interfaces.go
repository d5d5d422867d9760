package retriever

import (
	"context"

	"github.com/futig/virtual-ta/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]entity.Vector, error)
}

type VectorIndex interface {
	Search(ctx context.Context, query entity.Vector, k int) ([]entity.Neighbor, error)
}

type MetadataStore interface {
	Get(position int) (entity.ChunkRecord, error)
}
