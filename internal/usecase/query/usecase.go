package query

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// QueryUsecase is the entry point for answering a student question
type QueryUsecase struct {
	retriever   Retriever
	composer    Composer
	describer   ImageDescriber
	defaultTopK int
	maxTopK     int
	maxImage    int
	logger      *zap.Logger
}

func NewUsecase(
	retriever Retriever,
	composer Composer,
	describer ImageDescriber,
	cfg config.QueryConfig,
	logger *zap.Logger,
) *QueryUsecase {
	if describer == nil {
		describer = NopDescriber{}
	}
	return &QueryUsecase{
		retriever:   retriever,
		composer:    composer,
		describer:   describer,
		defaultTopK: cfg.DefaultTopK,
		maxTopK:     cfg.MaxTopK,
		maxImage:    cfg.MaxImageMiB << 20,
		logger:      logger,
	}
}

// Answer retrieves context for the question and composes a grounded answer
func (uc *QueryUsecase) Answer(ctx context.Context, q *entity.Query) (*entity.Answer, error) {
	ctx = logger.WithAction(ctx, "answer_query")

	if q == nil || strings.TrimSpace(q.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", entity.ErrInvalidQuery)
	}

	topK, err := uc.resolveTopK(q.TopK)
	if err != nil {
		return nil, err
	}
	ctx = logger.AddFields(ctx, zap.Int("top_k", topK))

	searchText := q.Question
	if q.Image != nil && *q.Image != "" {
		description, err := uc.describeImage(ctx, *q.Image)
		if err != nil {
			return nil, err
		}
		if description != "" {
			searchText = q.Question + "\n\n" + description
		}
	}

	retrieved, err := uc.retriever.Retrieve(ctx, searchText, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	answer, err := uc.composer.Compose(ctx, q.Question, retrieved)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	ctxzap.Info(ctx, "question answered",
		zap.Int("retrieved", len(retrieved)),
		zap.Int("links", len(answer.Links)),
	)

	return answer, nil
}

// resolveTopK applies the default for a missing top_k and caps large values at maxTopK
func (uc *QueryUsecase) resolveTopK(topK int) (int, error) {
	switch {
	case topK == 0:
		return uc.defaultTopK, nil
	case topK < 0:
		return 0, fmt.Errorf("%w: top_k must be positive, got %d", entity.ErrInvalidQuery, topK)
	case uc.maxTopK > 0 && topK > uc.maxTopK:
		return uc.maxTopK, nil
	}
	return topK, nil
}

// describeImage decodes the base64 payload and asks the describer for text.
// A describer failure only drops the description, the question is still answered.
func (uc *QueryUsecase) describeImage(ctx context.Context, encoded string) (string, error) {
	if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+len(";base64,"):]
	}

	image, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: image is not valid base64", entity.ErrInvalidQuery)
	}
	if uc.maxImage > 0 && len(image) > uc.maxImage {
		return "", fmt.Errorf("%w: image exceeds %d bytes", entity.ErrInvalidQuery, uc.maxImage)
	}

	description, err := uc.describer.Describe(ctx, image)
	if err != nil {
		ctxzap.Warn(ctx, "image description failed, answering from text only", zap.Error(err))
		return "", nil
	}
	return description, nil
}
