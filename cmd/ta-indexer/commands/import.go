package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/futig/virtual-ta/internal/entity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const importLongDesc string = `Import scraped forum posts into the post store.

The input is a JSON array of posts as written by the forum scraper:
  [{"post_id": "...", "topic_id": "...", "title": "...", "content": "...",
    "markdown_content": "...", "author": "...", "created_at": "2025-01-15T10:00:00Z",
    "url": "...", "category": "...", "tags": [], "reply_count": 0, "post_number": 1}]

Examples:
  ta-indexer import data/discourse_posts.json`

func newImportCmd(open indexerOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "import <posts.json>",
		Short: "Import scraped forum posts",
		Long:  importLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := readPosts(args[0])
			if err != nil {
				return err
			}

			indexer, err := open(cmd)
			if err != nil {
				return err
			}
			defer indexer.Close()

			res, err := indexer.Usecase.ImportPosts(cmd.Context(), posts)
			if err != nil {
				return fmt.Errorf("import stopped after %d posts: %w", res.Total(), err)
			}

			indexer.Logger.Info("Import finished",
				zap.String("file", args[0]),
				zap.Int("created", res.Created),
				zap.Int("updated", res.Updated),
				zap.Int("unchanged", res.Unchanged),
			)
			return nil
		},
	}
}

func readPosts(path string) ([]entity.ForumPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read posts file: %w", err)
	}

	var posts []entity.ForumPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode posts file: %w", err)
	}
	return posts, nil
}
