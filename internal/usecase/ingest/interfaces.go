package ingest

import (
	"context"
	"time"

	"github.com/futig/virtual-ta/internal/entity"
)

type PostRepository interface {
	Get(ctx context.Context, postID string) (*entity.ForumPost, error)
	Save(ctx context.Context, post *entity.ForumPost) error
	ListBetween(ctx context.Context, from, to time.Time) ([]entity.ForumPost, error)
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]entity.Vector, error)
	Model() string
}
