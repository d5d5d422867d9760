// Package sqlitevec serves snapshot vectors from a SQLite database using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/futig/virtual-ta/internal/entity"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const metaBuildID = "build_id"

// Index is a read-only KNN index over a vec0 table.
// Row ids are snapshot positions shifted by one since vec0 rowids start at 1.
type Index struct {
	db        *sql.DB
	dimension int
	logger    *zap.Logger
}

// Open connects to an existing index database built by Build
func Open(path string, dimension int, logger *zap.Logger) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: sqlite-vec database: %v", entity.ErrIndexUnavailable, err)
	}

	db, err := open("file:" + path + "?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrIndexUnavailable, err)
	}

	logger.Info("sqlite-vec index opened",
		zap.String("db_path", path),
		zap.Int("dimension", dimension),
	)

	return &Index{
		db:        db,
		dimension: dimension,
		logger:    logger,
	}, nil
}

// Build writes vectors into a fresh database at path, replacing any previous one.
// buildID is the manifest build id of the snapshot the vectors come from.
func Build(ctx context.Context, path, buildID string, vectors []entity.Vector, logger *zap.Logger) error {
	if len(vectors) == 0 {
		return fmt.Errorf("no vectors to index")
	}
	dimension := len(vectors[0])

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove previous database: %w", err)
	}

	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE vec_chunks USING vec0(embedding float[%d])`,
		dimension,
	)
	if _, err := db.ExecContext(ctx, createVec); err != nil {
		return fmt.Errorf("creating vec0 table: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE index_meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("creating meta table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO index_meta(key, value) VALUES (?, ?)`, metaBuildID, buildID); err != nil {
		return fmt.Errorf("recording build id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vec_chunks(rowid, embedding) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range vectors {
		if _, err := stmt.ExecContext(ctx, int64(i+1), serializeFloat32(v)); err != nil {
			return fmt.Errorf("inserting vector %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	logger.Info("sqlite-vec index built",
		zap.String("db_path", path),
		zap.String("build_id", buildID),
		zap.Int("vectors", len(vectors)),
		zap.Int("dimension", dimension),
	)
	return nil
}

func open(dsn string) (*sql.DB, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}
	return db, nil
}

// Search returns at most k positions ordered by ascending L2 distance
func (x *Index) Search(ctx context.Context, query entity.Vector, k int) ([]entity.Neighbor, error) {
	if k <= 0 {
		return []entity.Neighbor{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			entity.ErrEmbedding, len(query), x.dimension)
	}

	rows, err := x.db.QueryContext(ctx, `
		SELECT rowid, distance
		FROM vec_chunks
		WHERE embedding MATCH ?
			AND k = ?
		ORDER BY distance
	`, serializeFloat32(query), k)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %v", entity.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	neighbors := make([]entity.Neighbor, 0, k)
	for rows.Next() {
		var rowID int64
		var distance float64
		if err := rows.Scan(&rowID, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		neighbors = append(neighbors, entity.Neighbor{
			Position: int(rowID - 1),
			Score:    float32(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	x.logger.Debug("queried sqlite-vec", zap.Int("results", len(neighbors)))
	return neighbors, nil
}

func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vec_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// BuildID returns the snapshot build id recorded by Build
func (x *Index) BuildID(ctx context.Context) (string, error) {
	var id string
	err := x.db.QueryRowContext(ctx, `SELECT value FROM index_meta WHERE key = ?`, metaBuildID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("reading build id: %w", err)
	}
	return id, nil
}

func (x *Index) Close() error {
	return x.db.Close()
}

// serializeFloat32 converts a float32 slice to the little-endian blob sqlite-vec expects
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
