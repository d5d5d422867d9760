package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/virtual-ta/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepository stores scraped forum posts
type PostRepository interface {
	Save(ctx context.Context, post *entity.ForumPost) error
	Get(ctx context.Context, postID string) (*entity.ForumPost, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]entity.ForumPost, error)
}

var _ PostRepository = &PostPostgres{}

type PostPostgres struct {
	db *pgxpool.Pool
}

func NewPostPostgres(db *pgxpool.Pool) *PostPostgres {
	return &PostPostgres{db: db}
}

const postColumns = `post_id, topic_id, title, content, markdown_content, author,
	created_at, url, category, tags, reply_count, post_number`

// Save inserts the post or overwrites the stored copy with the same post_id
func (r *PostPostgres) Save(ctx context.Context, post *entity.ForumPost) error {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO discourse_posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (post_id) DO UPDATE SET
			topic_id = EXCLUDED.topic_id,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			markdown_content = EXCLUDED.markdown_content,
			author = EXCLUDED.author,
			created_at = EXCLUDED.created_at,
			url = EXCLUDED.url,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			reply_count = EXCLUDED.reply_count,
			post_number = EXCLUDED.post_number,
			imported_at = NOW()`,
		post.PostID, post.TopicID, post.Title, post.Content, post.MarkdownContent, post.Author,
		post.CreatedAt, post.URL, post.Category, tags, post.ReplyCount, post.PostNumber,
	)
	if err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

func (r *PostPostgres) Get(ctx context.Context, postID string) (*entity.ForumPost, error) {
	rows, err := r.db.Query(ctx, `SELECT `+postColumns+` FROM discourse_posts WHERE post_id = $1`, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	post, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// ListBetween returns posts created in [from, to], oldest first, grouped by topic
func (r *PostPostgres) ListBetween(ctx context.Context, from, to time.Time) ([]entity.ForumPost, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM discourse_posts
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY topic_id, post_number, created_at`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts, err := pgx.CollectRows(rows, scanPost)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func scanPost(row pgx.CollectableRow) (entity.ForumPost, error) {
	var p entity.ForumPost
	err := row.Scan(
		&p.PostID, &p.TopicID, &p.Title, &p.Content, &p.MarkdownContent, &p.Author,
		&p.CreatedAt, &p.URL, &p.Category, &p.Tags, &p.ReplyCount, &p.PostNumber,
	)
	return p, err
}
