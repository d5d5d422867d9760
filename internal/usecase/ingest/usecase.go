package ingest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// BuildRequest selects the sources of one snapshot
type BuildRequest struct {
	From  time.Time
	To    time.Time
	Pages []entity.CoursePage
}

// BuildResult holds parallel chunks and vectors ready to be written
type BuildResult struct {
	Model   string
	Chunks  []entity.ChunkRecord
	Vectors []entity.Vector
}

// IngestUsecase turns stored posts and course pages into embedded chunks
type IngestUsecase struct {
	posts        PostRepository
	embedder     Embedder
	chunker      Chunker
	batchSize    int
	forumBaseURL string
	logger       *zap.Logger
}

func NewUsecase(
	posts PostRepository,
	embedder Embedder,
	cfg *config.IndexerConfig,
	logger *zap.Logger,
) *IngestUsecase {
	return &IngestUsecase{
		posts:    posts,
		embedder: embedder,
		chunker: Chunker{
			MaxChars:     cfg.ChunkingCfg.MaxChars,
			OverlapChars: cfg.ChunkingCfg.OverlapChars,
		},
		batchSize:    cfg.EmbedBatchSize,
		forumBaseURL: strings.TrimRight(cfg.ForumBaseURL, "/"),
		logger:       logger,
	}
}

// ImportResult counts what an import did to the post store
type ImportResult struct {
	Created   int
	Updated   int
	Unchanged int
}

// Total is the number of posts processed
func (r ImportResult) Total() int {
	return r.Created + r.Updated + r.Unchanged
}

// ImportPosts stores scraped posts, replacing earlier copies of the same post.
// Posts identical to the stored copy are not written again.
func (uc *IngestUsecase) ImportPosts(ctx context.Context, posts []entity.ForumPost) (ImportResult, error) {
	ctx = logger.WithAction(ctx, "import_posts")

	var res ImportResult
	for i := range posts {
		post := &posts[i]
		if post.PostID == "" {
			return res, fmt.Errorf("post %d has no post_id", i)
		}

		stored, err := uc.posts.Get(ctx, post.PostID)
		switch {
		case errors.Is(err, entity.ErrPostNotFound):
			res.Created++
		case err != nil:
			return res, fmt.Errorf("get post %s: %w", post.PostID, err)
		case samePost(stored, post):
			res.Unchanged++
			continue
		default:
			res.Updated++
		}

		if err := uc.posts.Save(ctx, post); err != nil {
			return res, fmt.Errorf("save post %s: %w", post.PostID, err)
		}
	}

	ctxzap.Info(ctx, "posts imported",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("unchanged", res.Unchanged),
	)
	return res, nil
}

func samePost(a, b *entity.ForumPost) bool {
	return a.TopicID == b.TopicID &&
		a.Title == b.Title &&
		a.Content == b.Content &&
		a.MarkdownContent == b.MarkdownContent &&
		a.Author == b.Author &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.URL == b.URL &&
		a.Category == b.Category &&
		slices.Equal(a.Tags, b.Tags) &&
		a.ReplyCount == b.ReplyCount &&
		a.PostNumber == b.PostNumber
}

// Build chunks every source document and embeds the chunks in batches
func (uc *IngestUsecase) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	ctx = logger.WithAction(ctx, "build_snapshot")

	posts, err := uc.posts.ListBetween(ctx, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	docs := make([]entity.SourceDocument, 0, len(posts)+len(req.Pages))
	for i := range posts {
		docs = append(docs, uc.postDocument(&posts[i]))
	}
	for _, p := range req.Pages {
		docs = append(docs, entity.SourceDocument{Title: p.Title, URL: p.URL, Text: p.Markdown})
	}

	var chunks []entity.ChunkRecord
	for _, d := range docs {
		for _, text := range uc.chunker.Split(d.Text) {
			chunks = append(chunks, entity.ChunkRecord{
				ID:    len(chunks),
				Text:  text,
				Title: d.Title,
				URL:   d.URL,
			})
		}
	}

	ctxzap.Info(ctx, "sources chunked",
		zap.Int("posts", len(posts)),
		zap.Int("pages", len(req.Pages)),
		zap.Int("chunks", len(chunks)),
	)

	if len(chunks) == 0 {
		return nil, fmt.Errorf("no content to index between %s and %s",
			req.From.Format(time.DateOnly), req.To.Format(time.DateOnly))
	}

	vectors := make([]entity.Vector, 0, len(chunks))
	for start := 0; start < len(chunks); start += uc.batchSize {
		end := min(start+uc.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d..%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks", entity.ErrEmbedding, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)

		ctxzap.Debug(ctx, "batch embedded", zap.Int("done", end), zap.Int("total", len(chunks)))
	}

	return &BuildResult{
		Model:   uc.embedder.Model(),
		Chunks:  chunks,
		Vectors: vectors,
	}, nil
}

func (uc *IngestUsecase) postDocument(p *entity.ForumPost) entity.SourceDocument {
	url := p.URL
	if url == "" && p.TopicID != "" {
		url = fmt.Sprintf("%s/t/%s/%d", uc.forumBaseURL, p.TopicID, p.PostNumber)
	} else if strings.HasPrefix(url, "/") {
		url = uc.forumBaseURL + url
	}

	return entity.SourceDocument{
		Title: p.Title,
		URL:   url,
		Text:  p.Body(),
	}
}
