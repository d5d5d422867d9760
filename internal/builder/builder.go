package builder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/futig/virtual-ta/internal/api"
	healthapi "github.com/futig/virtual-ta/internal/api/health"
	queryapi "github.com/futig/virtual-ta/internal/api/query"
	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/integration/llm"
	"github.com/futig/virtual-ta/internal/integration/vision"
	"github.com/futig/virtual-ta/internal/pkg/validator"
	"github.com/futig/virtual-ta/internal/snapshot"
	"github.com/futig/virtual-ta/internal/usecase/composer"
	"github.com/futig/virtual-ta/internal/usecase/query"
	"github.com/futig/virtual-ta/internal/usecase/retriever"
	"go.uber.org/zap"
)

// Build loads the snapshot and wires the query service. It fails before any
// listener is opened when the snapshot is missing or inconsistent.
func Build(environment string) (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	snap, err := snapshot.Load(cfg.SnapshotCfg.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if snap.Manifest.Dimension != cfg.EmbeddingCfg.Dimension {
		return nil, fmt.Errorf("snapshot dimension %d does not match EMBEDDING_DIMENSION %d",
			snap.Manifest.Dimension, cfg.EmbeddingCfg.Dimension)
	}

	index, indexCloser, err := setupIndex(ctx, cfg.SnapshotCfg, snap, logger)
	if err != nil {
		return nil, fmt.Errorf("setup index: %w", err)
	}
	var closers []io.Closer
	if indexCloser != nil {
		closers = append(closers, indexCloser)
	}

	// Initialize external service connectors (with mock support)
	embedder := setupEmbedder(cfg.EmbeddingCfg, cfg.EnableMocks, logger)

	var llmConnector composer.LLMConnector
	var describer query.ImageDescriber = query.NopDescriber{}

	if cfg.EnableMocks {
		logger.Info("Using mock LLM connector")
		llmConnector = llm.NewMockConnector(logger)
	} else {
		llmConnector = llm.NewConnector(cfg.LLMCfg, logger)
		if cfg.VisionCfg.Enabled {
			logger.Info("Image description enabled", zap.String("model", cfg.VisionCfg.Model))
			describer = vision.NewConnector(cfg.LLMCfg, cfg.VisionCfg, logger)
		}
	}

	// Initialize use cases
	retrieverUC := retriever.NewUsecase(embedder, index, snap.Metadata, logger)
	composerUC := composer.NewUsecase(llmConnector, cfg.LLMCfg, logger)
	queryUC := query.NewUsecase(retrieverUC, composerUC, describer, cfg.QueryCfg, logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	queryHandler := queryapi.NewHandler(queryUC, validator.NewQueryValidator(cfg.QueryCfg))
	healthHandler := healthapi.NewHandler(snap.Len(), snap.Manifest.BuildID, cfg.SnapshotCfg.Backend)

	router := api.SetupRouter(queryHandler, healthHandler, cfg.RequestTimeout, logger)

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.String("snapshot_id", snap.Manifest.BuildID),
	)

	return &App{
		server:  server,
		closers: closers,
		logger:  logger,
	}, nil
}
