package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/integration/common"
	pkghttp "github.com/futig/virtual-ta/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	DefaultOllamaURL = "http://localhost:11434"
	ollamaEmbedPath  = "/api/embed"
)

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// OllamaConnector embeds text with a local Ollama server (all-minilm produces 384-dim vectors)
type OllamaConnector struct {
	connector *pkghttp.Connector
	model     string
	dimension int
	logger    *zap.Logger
}

func NewOllamaConnector(
	cfg config.EmbeddingConnectorConfig,
	logger *zap.Logger,
) *OllamaConnector {
	baseURL := strings.TrimRight(cfg.Url, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	return &OllamaConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, baseURL, logger),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    logger,
	}
}

// Embed returns one vector per text, in input order
func (c *OllamaConnector) Embed(ctx context.Context, texts []string) ([]entity.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctxzap.Debug(ctx, "embedding texts via ollama",
		zap.String("model", c.model),
		zap.Int("count", len(texts)),
	)

	var resp ollamaEmbedResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, ollamaEmbedPath, &ollamaEmbedRequest{
		Model: c.model,
		Input: texts,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", entity.ErrEmbedding, err)
	}

	vectors := make([]entity.Vector, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vectors[i] = e
	}

	if err := checkVectors(vectors, len(texts), c.dimension); err != nil {
		return nil, err
	}

	return vectors, nil
}

// Model identifies the embedding model, recorded in snapshot manifests
func (c *OllamaConnector) Model() string {
	return "ollama/" + c.model
}
