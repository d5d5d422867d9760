package snapshot

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/futig/virtual-ta/internal/entity"
)

// FlatIndex is an exact brute-force L2 index over in-memory vectors.
// Safe for concurrent searches since the vectors are never modified.
type FlatIndex struct {
	vectors   []entity.Vector
	dimension int
}

func NewFlatIndex(vectors []entity.Vector, dimension int) *FlatIndex {
	return &FlatIndex{
		vectors:   vectors,
		dimension: dimension,
	}
}

// Search returns at most k neighbours ordered by ascending L2 distance.
// Equal distances keep index order.
func (f *FlatIndex) Search(ctx context.Context, query entity.Vector, k int) ([]entity.Neighbor, error) {
	if k <= 0 || len(f.vectors) == 0 {
		return []entity.Neighbor{}, nil
	}
	if len(query) != f.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			entity.ErrEmbedding, len(query), f.dimension)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := make([]entity.Neighbor, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = entity.Neighbor{Position: i, Score: l2(query, v)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score < hits[b].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (f *FlatIndex) Count(_ context.Context) (int, error) {
	return len(f.vectors), nil
}

func l2(a, b entity.Vector) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
