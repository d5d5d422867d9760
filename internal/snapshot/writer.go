package snapshot

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/futig/virtual-ta/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Write persists chunks and vectors as a snapshot in dir. Files are written to a
// sibling temp directory and swapped in with renames. The previous snapshot is
// moved aside first and restored if the new one cannot be moved into place.
func Write(dir, model string, chunks []entity.ChunkRecord, vectors []entity.Vector, logger *zap.Logger) (*Manifest, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk count %d does not match vector count %d", len(chunks), len(vectors))
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("refusing to write an empty snapshot")
	}

	dimension := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dimension)
		}
	}

	for i := range chunks {
		chunks[i].ID = i
	}

	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create parent dir: %w", err)
	}

	tmp, err := os.MkdirTemp(parent, filepath.Base(dir)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	manifest := &Manifest{
		BuildID:   uuid.NewString(),
		Model:     model,
		Dimension: dimension,
		Count:     len(vectors),
		Metric:    MetricL2,
		CreatedAt: time.Now().UTC(),
	}

	if err := writeChunks(filepath.Join(tmp, ChunksFile), chunks); err != nil {
		return nil, err
	}
	if err := writeVectors(filepath.Join(tmp, VectorsFile), vectors); err != nil {
		return nil, err
	}
	// Manifest goes last so a directory with a manifest is complete
	if err := writeManifest(filepath.Join(tmp, ManifestFile), manifest); err != nil {
		return nil, err
	}

	if err := swapDir(tmp, dir, logger); err != nil {
		return nil, err
	}

	logger.Info("snapshot written",
		zap.String("dir", dir),
		zap.String("build_id", manifest.BuildID),
		zap.Int("chunks", manifest.Count),
		zap.Int("dimension", dimension),
	)

	return manifest, nil
}

// swapDir replaces dir with src. An existing dir is renamed to a backup that
// is deleted only after src is in place.
func swapDir(src, dir string, logger *zap.Logger) error {
	backup := ""
	if _, err := os.Stat(dir); err == nil {
		backup = dir + ".old-" + uuid.NewString()[:8]
		if err := os.Rename(dir, backup); err != nil {
			return fmt.Errorf("move previous snapshot aside: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat previous snapshot: %w", err)
	}

	if err := renameDir(src, dir); err != nil {
		if backup != "" {
			if rerr := os.Rename(backup, dir); rerr != nil {
				logger.Error("failed to restore previous snapshot",
					zap.String("backup", backup),
					zap.Error(rerr),
				)
			}
		}
		return fmt.Errorf("move snapshot into place: %w", err)
	}

	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			logger.Warn("failed to remove previous snapshot", zap.String("backup", backup), zap.Error(err))
		}
	}
	return nil
}

// renameDir is replaced in tests
var renameDir = os.Rename

func writeChunks(path string, chunks []entity.ChunkRecord) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeVectors(path string, vectors []entity.Vector) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vectors file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(&vectorsFile{Vectors: vectors}); err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}
	return file.Sync()
}
