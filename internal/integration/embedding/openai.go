package embedding

import (
	"context"
	"fmt"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/integration/common"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConnector embeds text with the OpenAI embeddings endpoint.
// The dimensions parameter is sent so text-embedding-3 models match the snapshot.
type OpenAIConnector struct {
	client    *openai.Client
	model     string
	dimension int
	logger    *zap.Logger
}

func NewOpenAIConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *OpenAIConnector {
	return &OpenAIConnector{
		client:    common.NewOpenAIClient(cfg.HTTPClientConfig),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger,
	}
}

func (c *OpenAIConnector) Embed(ctx context.Context, texts []string) ([]entity.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctxzap.Debug(ctx, "embedding texts via openai",
		zap.String("model", c.model),
		zap.Int("count", len(texts)),
	)

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: c.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", entity.ErrEmbedding, err)
	}

	vectors := make([]entity.Vector, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: openai returned index %d for %d texts", entity.ErrEmbedding, d.Index, len(texts))
		}
		v := make(entity.Vector, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		vectors[d.Index] = v
	}

	if err := checkVectors(vectors, len(texts), c.dimension); err != nil {
		return nil, err
	}

	return vectors, nil
}

func (c *OpenAIConnector) Model() string {
	return "openai/" + c.model
}
