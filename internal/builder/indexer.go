package builder

import (
	"context"
	"fmt"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/repository"
	"github.com/futig/virtual-ta/internal/usecase/ingest"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Indexer bundles what the ta-indexer commands need
type Indexer struct {
	Cfg     *config.IndexerConfig
	Usecase *ingest.IngestUsecase
	Logger  *zap.Logger

	db *pgxpool.Pool
}

// BuildIndexer loads the indexer configuration and connects to the post store
func BuildIndexer(ctx context.Context, environment string) (*Indexer, error) {
	cfg, err := config.LoadIndexerConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Batch embedding of unique chunks gains nothing from the query cache
	embCfg := cfg.EmbeddingCfg
	embCfg.CacheTTL = 0
	embedder := setupEmbedder(embCfg, cfg.EnableMocks, logger)

	uc := ingest.NewUsecase(repository.NewPostPostgres(db), embedder, cfg, logger)

	return &Indexer{
		Cfg:     cfg,
		Usecase: uc,
		Logger:  logger,
		db:      db,
	}, nil
}

// Migrate applies the post store migrations
func (i *Indexer) Migrate() error {
	i.Logger.Info("Running database migrations", zap.String("source", i.Cfg.MigrationsPath))
	if err := repository.RunMigrations(i.Cfg.MigrationsPath, i.Cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	i.Logger.Info("Database migrations completed successfully")
	return nil
}

func (i *Indexer) Close() {
	i.db.Close()
	_ = i.Logger.Sync()
}
