package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// IndexerConfig holds the configuration of the offline snapshot builder
type IndexerConfig struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	EnableMocks bool   `env:"ENABLE_MOCKS" envDefault:"false"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"5"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	MigrationsPath      string        `env:"MIGRATIONS_PATH" envDefault:"file://internal/repository/migrations"`

	SnapshotCfg  SnapshotConfig           `envPrefix:"SNAPSHOT_"`
	EmbeddingCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`
	ChunkingCfg  ChunkingConfig           `envPrefix:"CHUNK_"`

	// Course site the scraped pages were taken from, used to build citation URLs
	CourseBaseURL string `env:"COURSE_BASE_URL" envDefault:"https://tds.s-anand.net/#/"`
	// Forum base URL, used when a post has no absolute URL
	ForumBaseURL string `env:"FORUM_BASE_URL" envDefault:"https://discourse.onlinedegree.iitm.ac.in"`

	EmbedBatchSize int `env:"EMBED_BATCH_SIZE" envDefault:"32"`

	Environment string
}

type ChunkingConfig struct {
	MaxChars     int `env:"MAX_CHARS" envDefault:"1200"`
	OverlapChars int `env:"OVERLAP_CHARS" envDefault:"200"`
}

// LoadIndexerConfig reads the .env file for the given environment and parses the indexer settings
func LoadIndexerConfig(environment string) (*IndexerConfig, error) {
	envFile := getEnvFile(environment)
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &IndexerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.Environment = environment

	if err := validateIndexerConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateIndexerConfig(cfg *IndexerConfig) error {
	var errors []string

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if cfg.ChunkingCfg.MaxChars < 100 {
		errors = append(errors, fmt.Sprintf("CHUNK_MAX_CHARS must be at least 100, got %d", cfg.ChunkingCfg.MaxChars))
	}

	if cfg.ChunkingCfg.OverlapChars < 0 || cfg.ChunkingCfg.OverlapChars >= cfg.ChunkingCfg.MaxChars {
		errors = append(errors, fmt.Sprintf("CHUNK_OVERLAP_CHARS must be between 0 and CHUNK_MAX_CHARS(%d), got %d", cfg.ChunkingCfg.MaxChars, cfg.ChunkingCfg.OverlapChars))
	}

	if cfg.EmbedBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("EMBED_BATCH_SIZE must be positive, got %d", cfg.EmbedBatchSize))
	}

	if cfg.EmbeddingCfg.Dimension < 1 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_DIMENSION must be positive, got %d", cfg.EmbeddingCfg.Dimension))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
