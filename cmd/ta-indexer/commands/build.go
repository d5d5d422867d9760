package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/virtual-ta/internal/builder"
	"github.com/futig/virtual-ta/internal/snapshot"
	"github.com/futig/virtual-ta/internal/snapshot/qdrant"
	"github.com/futig/virtual-ta/internal/snapshot/sqlitevec"
	"github.com/futig/virtual-ta/internal/usecase/ingest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const buildLongDesc string = `Build the index snapshot from stored forum posts and course pages.

Forum posts created inside the date window are combined with the markdown
course pages, split into chunks and embedded. The snapshot directory is
replaced atomically. The sqlite-vec database and the qdrant collection are
only written when requested.

Examples:
  ta-indexer build --pages data/tds
  ta-indexer build --since 2025-01-01 --until 2025-04-14 --out data/snapshot
  ta-indexer build --pages data/tds --sqlite --qdrant`

type buildCommander struct {
	pagesDir string
	since    string
	until    string
	out      string
	sqlite   bool
	qdrant   bool
}

func newBuildCmd(open indexerOpener) *cobra.Command {
	cmder := &buildCommander{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Chunk, embed and write the index snapshot",
		Long:  buildLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			indexer, err := open(cmd)
			if err != nil {
				return err
			}
			defer indexer.Close()

			return cmder.run(cmd.Context(), indexer)
		},
	}

	cmd.Flags().StringVarP(&cmder.pagesDir, "pages", "p", "", "Directory of course pages as markdown files")
	cmd.Flags().StringVar(&cmder.since, "since", "2025-01-01", "First day of forum posts to index")
	cmd.Flags().StringVar(&cmder.until, "until", "2025-04-14", "Last day of forum posts to index")
	cmd.Flags().StringVarP(&cmder.out, "out", "o", "", "Snapshot directory (defaults to SNAPSHOT_DIR)")
	cmd.Flags().BoolVar(&cmder.sqlite, "sqlite", false, "Also write the sqlite-vec database at SNAPSHOT_SQLITE_PATH")
	cmd.Flags().BoolVar(&cmder.qdrant, "qdrant", false, "Also populate the qdrant collection")

	return cmd
}

func (c *buildCommander) run(ctx context.Context, indexer *builder.Indexer) error {
	from, err := time.Parse(time.DateOnly, c.since)
	if err != nil {
		return fmt.Errorf("parse --since: %w", err)
	}
	until, err := time.Parse(time.DateOnly, c.until)
	if err != nil {
		return fmt.Errorf("parse --until: %w", err)
	}
	// The window includes the whole last day
	to := until.Add(24*time.Hour - time.Nanosecond)

	req := ingest.BuildRequest{From: from, To: to}
	if c.pagesDir != "" {
		req.Pages, err = ingest.LoadCoursePages(c.pagesDir, indexer.Cfg.CourseBaseURL)
		if err != nil {
			return err
		}
	}

	result, err := indexer.Usecase.Build(ctx, req)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	out := c.out
	if out == "" {
		out = indexer.Cfg.SnapshotCfg.Dir
	}

	manifest, err := snapshot.Write(out, result.Model, result.Chunks, result.Vectors, indexer.Logger)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if c.sqlite {
		if err := sqlitevec.Build(ctx, indexer.Cfg.SnapshotCfg.SQLitePath, manifest.BuildID, result.Vectors, indexer.Logger); err != nil {
			return fmt.Errorf("build sqlite-vec index: %w", err)
		}
	}

	if c.qdrant {
		idx, err := qdrant.NewIndex(indexer.Cfg.SnapshotCfg.Qdrant, manifest.Dimension, indexer.Logger)
		if err != nil {
			return err
		}
		defer idx.Close()

		if err := idx.Populate(ctx, manifest.BuildID, result.Vectors); err != nil {
			return fmt.Errorf("populate qdrant: %w", err)
		}
	}

	indexer.Logger.Info("Snapshot build finished",
		zap.String("build_id", manifest.BuildID),
		zap.String("dir", out),
		zap.Int("chunks", manifest.Count),
		zap.Int("pages", len(req.Pages)),
	)
	return nil
}
