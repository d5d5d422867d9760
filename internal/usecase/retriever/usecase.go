package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/virtual-ta/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RetrieverUsecase turns a question into the closest chunks of the snapshot
type RetrieverUsecase struct {
	embedder Embedder
	index    VectorIndex
	metadata MetadataStore
	logger   *zap.Logger
}

func NewUsecase(
	embedder Embedder,
	index VectorIndex,
	metadata MetadataStore,
	logger *zap.Logger,
) *RetrieverUsecase {
	return &RetrieverUsecase{
		embedder: embedder,
		index:    index,
		metadata: metadata,
		logger:   logger,
	}
}

// Retrieve returns up to topK chunks, closest first. Fewer results than topK is not an error.
func (uc *RetrieverUsecase) Retrieve(ctx context.Context, question string, topK int) (entity.RetrievalResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", entity.ErrInvalidQuery)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", entity.ErrInvalidQuery, topK)
	}

	vectors, err := uc.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 vector, got %d", entity.ErrEmbedding, len(vectors))
	}

	neighbors, err := uc.index.Search(ctx, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	result := make(entity.RetrievalResult, 0, len(neighbors))
	seen := make(map[int]struct{}, len(neighbors))
	for _, n := range neighbors {
		if len(result) == topK {
			break
		}
		if _, dup := seen[n.Position]; dup {
			continue
		}

		chunk, err := uc.metadata.Get(n.Position)
		if errors.Is(err, entity.ErrMetadataOutOfRange) {
			ctxzap.Warn(ctx, "index returned position without metadata",
				zap.Int("position", n.Position),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get metadata: %w", err)
		}

		seen[n.Position] = struct{}{}
		result = append(result, entity.ScoredChunk{Chunk: chunk, Score: n.Score})
	}

	ctxzap.Debug(ctx, "chunks retrieved",
		zap.Int("top_k", topK),
		zap.Int("neighbors", len(neighbors)),
		zap.Int("results", len(result)),
	)

	return result, nil
}
