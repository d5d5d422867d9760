// Package qdrant serves snapshot vectors from a Qdrant collection.
package qdrant

import (
	"context"
	"fmt"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const (
	upsertBatchSize = 256
	buildIDField    = "build_id"
)

// Index queries a collection whose point ids are snapshot positions.
// The collection uses Euclid distance so scores are L2 distances, closest first.
type Index struct {
	client     *qdrant.Client
	collection string
	dimension  int
	logger     *zap.Logger
}

func NewIndex(cfg config.QdrantConfig, dimension int, logger *zap.Logger) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant client: %v", entity.ErrIndexUnavailable, err)
	}

	return &Index{
		client:     client,
		collection: cfg.Collection,
		dimension:  dimension,
		logger:     logger,
	}, nil
}

// Populate recreates the collection and uploads every vector, id = position.
// Each point carries buildID in its payload.
func (x *Index) Populate(ctx context.Context, buildID string, vectors []entity.Vector) error {
	exists, err := x.client.CollectionExists(ctx, x.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		if err := x.client.DeleteCollection(ctx, x.collection); err != nil {
			return fmt.Errorf("drop collection: %w", err)
		}
	}

	err = x.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: x.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(x.dimension),
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	payload := qdrant.NewValueMap(map[string]any{buildIDField: buildID})

	for start := 0; start < len(vectors); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(vectors))

		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(uint64(i)),
				Vectors: qdrant.NewVectors(vectors[i]...),
				Payload: payload,
			})
		}

		_, err := x.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: x.collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		if err != nil {
			return fmt.Errorf("upsert points %d..%d: %w", start, end, err)
		}
	}

	x.logger.Info("qdrant collection populated",
		zap.String("collection", x.collection),
		zap.String("build_id", buildID),
		zap.Int("points", len(vectors)),
	)
	return nil
}

func (x *Index) Search(ctx context.Context, query entity.Vector, k int) ([]entity.Neighbor, error) {
	if k <= 0 {
		return []entity.Neighbor{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			entity.ErrEmbedding, len(query), x.dimension)
	}

	points, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          qdrant.PtrOf(uint64(k)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant query: %v", entity.ErrIndexUnavailable, err)
	}

	neighbors := make([]entity.Neighbor, 0, len(points))
	for _, p := range points {
		neighbors = append(neighbors, entity.Neighbor{
			Position: int(p.GetId().GetNum()),
			Score:    p.GetScore(),
		})
	}
	return neighbors, nil
}

func (x *Index) Count(ctx context.Context) (int, error) {
	n, err := x.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: x.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return int(n), nil
}

// BuildID reads the snapshot build id stored with the collection points
func (x *Index) BuildID(ctx context.Context) (string, error) {
	points, err := x.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: x.collection,
		Limit:          qdrant.PtrOf(uint32(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return "", fmt.Errorf("scroll points: %w", err)
	}
	if len(points) == 0 {
		return "", fmt.Errorf("collection %s is empty", x.collection)
	}
	return points[0].GetPayload()[buildIDField].GetStringValue(), nil
}

func (x *Index) Close() error {
	return x.client.Close()
}
