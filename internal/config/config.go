package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/virtual-ta/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the query service configuration
type Config struct {
	// Server configuration
	ServerAddr     string        `env:"SERVER_ADDR" envDefault:":8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	SnapshotCfg  SnapshotConfig           `envPrefix:"SNAPSHOT_"`
	EmbeddingCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`
	LLMCfg       LLMConnectorConfig       `envPrefix:"LLM_"`
	VisionCfg    VisionConfig             `envPrefix:"VISION_"`
	QueryCfg     QueryConfig              `envPrefix:"QUERY_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// SnapshotConfig describes where the index snapshot lives and which index backend serves it
type SnapshotConfig struct {
	Dir        string       `env:"DIR" envDefault:"data/snapshot"`
	Backend    string       `env:"BACKEND" envDefault:"flat"` // flat, sqlitevec, qdrant
	SQLitePath string       `env:"SQLITE_PATH" envDefault:"data/snapshot/index.db"`
	Qdrant     QdrantConfig `envPrefix:"QDRANT_"`
}

type QdrantConfig struct {
	Host       string `env:"HOST" envDefault:"localhost"`
	Port       int    `env:"PORT" envDefault:"6334"`
	APIKey     string `env:"API_KEY"`
	UseTLS     bool   `env:"USE_TLS" envDefault:"false"`
	Collection string `env:"COLLECTION" envDefault:"tds_chunks"`
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Provider  string        `env:"PROVIDER" envDefault:"ollama"` // ollama, openai
	Model     string        `env:"MODEL" envDefault:"all-minilm"`
	Dimension int           `env:"DIMENSION" envDefault:"384"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Model       string               `env:"MODEL" envDefault:"gpt-3.5-turbo"`
	Temperature float32              `env:"TEMPERATURE" envDefault:"0.2"`
	MaxTokens   int                  `env:"MAX_TOKENS" envDefault:"0"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// VisionConfig enables the optional image description branch
type VisionConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Model   string `env:"MODEL" envDefault:"gpt-4o-mini"`
}

type QueryConfig struct {
	DefaultTopK int `env:"DEFAULT_TOP_K" envDefault:"5"`
	MaxTopK     int `env:"MAX_TOP_K" envDefault:"20"`
	MaxImageMiB int `env:"MAX_IMAGE_MIB" envDefault:"5"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// LoadConfig reads the .env file for the given environment and parses the process environment
func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.SnapshotCfg.Backend {
	case "flat", "sqlitevec", "qdrant":
	default:
		errors = append(errors, fmt.Sprintf("SNAPSHOT_BACKEND must be one of flat, sqlitevec, qdrant, got %q", cfg.SnapshotCfg.Backend))
	}

	switch cfg.EmbeddingCfg.Provider {
	case "ollama", "openai":
	default:
		errors = append(errors, fmt.Sprintf("EMBEDDING_PROVIDER must be one of ollama, openai, got %q", cfg.EmbeddingCfg.Provider))
	}

	if cfg.EmbeddingCfg.Dimension < 1 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_DIMENSION must be positive, got %d", cfg.EmbeddingCfg.Dimension))
	}

	// The completion call is retried at most once
	if cfg.LLMCfg.Retry.Attempts < 1 || cfg.LLMCfg.Retry.Attempts > 2 {
		errors = append(errors, fmt.Sprintf("LLM_RETRY_ATTEMPTS must be 1 or 2, got %d", cfg.LLMCfg.Retry.Attempts))
	}

	if cfg.LLMCfg.Retry.Timeout <= 0 {
		errors = append(errors, fmt.Sprintf("LLM_RETRY_TIMEOUT must be positive, got %s", cfg.LLMCfg.Retry.Timeout))
	}

	if cfg.QueryCfg.DefaultTopK < 1 || cfg.QueryCfg.DefaultTopK > cfg.QueryCfg.MaxTopK {
		errors = append(errors, fmt.Sprintf("QUERY_DEFAULT_TOP_K must be between 1 and QUERY_MAX_TOP_K(%d), got %d", cfg.QueryCfg.MaxTopK, cfg.QueryCfg.DefaultTopK))
	}

	if !cfg.EnableMocks && cfg.LLMCfg.Token == "" && cfg.LLMCfg.Url == "" {
		errors = append(errors, "LLM_TOKEN or LLM_SERVICE_URL must be set when mocks are disabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
