package snapshot

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/futig/virtual-ta/internal/entity"
	"go.uber.org/zap"
)

// Counter is implemented by every index backend
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Stamped is implemented by backends stored outside the snapshot directory.
// BuildID reports the manifest build id the backend was populated from.
type Stamped interface {
	BuildID(ctx context.Context) (string, error)
}

// Snapshot is the immutable result of an ingestion run: vectors plus the
// parallel chunk records. Position i of Vectors describes Metadata.Get(i).
type Snapshot struct {
	Manifest *Manifest
	Vectors  []entity.Vector
	Metadata *MetadataStore
}

type vectorsFile struct {
	Vectors []entity.Vector
}

// Load reads and validates a snapshot directory. Any missing, empty or
// inconsistent file fails with entity.ErrIndexUnavailable.
func Load(dir string, logger *zap.Logger) (*Snapshot, error) {
	manifest, err := readManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, unavailable("read manifest", err)
	}

	chunks, err := readChunks(filepath.Join(dir, ChunksFile))
	if err != nil {
		return nil, unavailable("read chunks", err)
	}

	vectors, err := readVectors(filepath.Join(dir, VectorsFile))
	if err != nil {
		return nil, unavailable("read vectors", err)
	}

	snap := &Snapshot{
		Manifest: manifest,
		Vectors:  vectors,
		Metadata: NewMetadataStore(chunks),
	}
	if err := snap.validate(); err != nil {
		return nil, err
	}

	logger.Info("snapshot loaded",
		zap.String("dir", dir),
		zap.String("build_id", manifest.BuildID),
		zap.String("model", manifest.Model),
		zap.Int("chunks", len(chunks)),
		zap.Int("dimension", manifest.Dimension),
	)

	return snap, nil
}

// FlatIndex builds the default in-process index over the snapshot vectors
func (s *Snapshot) FlatIndex() *FlatIndex {
	return NewFlatIndex(s.Vectors, s.Manifest.Dimension)
}

// Len is the number of chunks in the snapshot
func (s *Snapshot) Len() int {
	return s.Metadata.Len()
}

// VerifyIndex checks that an index backend holds exactly one vector per chunk
// and, for stamped backends, that it was populated from this snapshot build.
func (s *Snapshot) VerifyIndex(ctx context.Context, idx Counter) error {
	n, err := idx.Count(ctx)
	if err != nil {
		return unavailable("count index", err)
	}
	if n != s.Len() {
		return fmt.Errorf("%w: index holds %d vectors, snapshot has %d chunks",
			entity.ErrIndexUnavailable, n, s.Len())
	}

	stamped, ok := idx.(Stamped)
	if !ok {
		return nil
	}
	buildID, err := stamped.BuildID(ctx)
	if err != nil {
		return unavailable("read index build id", err)
	}
	if buildID != s.Manifest.BuildID {
		return fmt.Errorf("%w: index was built from snapshot %q, loaded snapshot is %q",
			entity.ErrIndexUnavailable, buildID, s.Manifest.BuildID)
	}
	return nil
}

func (s *Snapshot) validate() error {
	m := s.Manifest
	switch {
	case len(s.Vectors) == 0:
		return fmt.Errorf("%w: snapshot is empty", entity.ErrIndexUnavailable)
	case len(s.Vectors) != s.Metadata.Len():
		return fmt.Errorf("%w: %d vectors but %d chunks",
			entity.ErrIndexUnavailable, len(s.Vectors), s.Metadata.Len())
	case m.Count != len(s.Vectors):
		return fmt.Errorf("%w: manifest count %d, found %d vectors",
			entity.ErrIndexUnavailable, m.Count, len(s.Vectors))
	case m.Metric != "" && m.Metric != MetricL2:
		return fmt.Errorf("%w: unsupported metric %q", entity.ErrIndexUnavailable, m.Metric)
	case m.Dimension <= 0:
		return fmt.Errorf("%w: invalid dimension %d", entity.ErrIndexUnavailable, m.Dimension)
	}

	for i, v := range s.Vectors {
		if len(v) != m.Dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, manifest says %d",
				entity.ErrIndexUnavailable, i, len(v), m.Dimension)
		}
	}

	return nil
}

func readChunks(path string) ([]entity.ChunkRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var chunks []entity.ChunkRecord
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	return chunks, nil
}

func readVectors(path string) ([]entity.Vector, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var vf vectorsFile
	if err := gob.NewDecoder(file).Decode(&vf); err != nil {
		return nil, fmt.Errorf("decode vectors: %w", err)
	}
	return vf.Vectors, nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s: file not found: %v", entity.ErrIndexUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", entity.ErrIndexUnavailable, op, err)
}
