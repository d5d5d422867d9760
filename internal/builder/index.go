package builder

import (
	"context"
	"fmt"
	"io"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/snapshot"
	"github.com/futig/virtual-ta/internal/snapshot/qdrant"
	"github.com/futig/virtual-ta/internal/snapshot/sqlitevec"
	"github.com/futig/virtual-ta/internal/usecase/retriever"
	"go.uber.org/zap"
)

type vectorIndex interface {
	retriever.VectorIndex
	snapshot.Counter
}

// setupIndex opens the configured backend and checks it matches the snapshot
func setupIndex(
	ctx context.Context,
	cfg config.SnapshotConfig,
	snap *snapshot.Snapshot,
	logger *zap.Logger,
) (retriever.VectorIndex, io.Closer, error) {
	var (
		idx    vectorIndex
		closer io.Closer
	)

	switch cfg.Backend {
	case "sqlitevec":
		x, err := sqlitevec.Open(cfg.SQLitePath, snap.Manifest.Dimension, logger)
		if err != nil {
			return nil, nil, err
		}
		idx, closer = x, x
	case "qdrant":
		x, err := qdrant.NewIndex(cfg.Qdrant, snap.Manifest.Dimension, logger)
		if err != nil {
			return nil, nil, err
		}
		idx, closer = x, x
	default:
		idx = snap.FlatIndex()
	}

	if err := snap.VerifyIndex(ctx, idx); err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, fmt.Errorf("verify %s index: %w", cfg.Backend, err)
	}

	logger.Info("Vector index ready",
		zap.String("backend", cfg.Backend),
		zap.Int("vectors", snap.Len()),
	)
	return idx, closer, nil
}
