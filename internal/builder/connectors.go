package builder

import (
	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/integration/embedding"
	"go.uber.org/zap"
)

// setupEmbedder selects the embedding provider and wraps it with the query cache
func setupEmbedder(cfg config.EmbeddingConnectorConfig, mocks bool, logger *zap.Logger) embedding.Embedder {
	var embedder embedding.Embedder

	switch {
	case mocks:
		logger.Info("Using mock embedding connector")
		embedder = embedding.NewMockConnector(cfg.Dimension, logger)
	case cfg.Provider == "openai":
		embedder = embedding.NewOpenAIConnector(cfg, logger)
	default:
		embedder = embedding.NewOllamaConnector(cfg, logger)
	}

	logger.Info("Embedding connector initialized",
		zap.String("model", embedder.Model()),
		zap.Int("dimension", cfg.Dimension),
	)

	if cfg.CacheTTL > 0 {
		return embedding.NewCachedEmbedder(embedder, cfg.CacheTTL)
	}
	return embedder
}
