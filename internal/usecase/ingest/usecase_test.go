package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/integration/embedding"
	"github.com/futig/virtual-ta/internal/usecase/ingest"
)

type memoryPosts struct {
	posts map[string]entity.ForumPost
	saves int
}

func (m *memoryPosts) Get(_ context.Context, id string) (*entity.ForumPost, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, entity.ErrPostNotFound
	}
	return &p, nil
}

func (m *memoryPosts) Save(_ context.Context, p *entity.ForumPost) error {
	m.posts[p.PostID] = *p
	m.saves++
	return nil
}

func (m *memoryPosts) ListBetween(_ context.Context, from, to time.Time) ([]entity.ForumPost, error) {
	var out []entity.ForumPost
	for _, p := range m.posts {
		if !p.CreatedAt.Before(from) && !p.CreatedAt.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ = Describe("IngestUsecase", func() {
	var (
		ctx   context.Context
		posts *memoryPosts
		uc    *ingest.IngestUsecase
	)

	BeforeEach(func() {
		ctx = context.Background()
		posts = &memoryPosts{posts: map[string]entity.ForumPost{}}
		cfg := &config.IndexerConfig{
			ChunkingCfg:    config.ChunkingConfig{MaxChars: 200, OverlapChars: 20},
			EmbedBatchSize: 2,
			ForumBaseURL:   "https://forum.example/",
		}
		uc = ingest.NewUsecase(posts, embedding.NewMockConnector(8, zap.NewNop()), cfg, zap.NewNop())
	})

	It("should import posts and replace duplicates", func() {
		res, err := uc.ImportPosts(ctx, []entity.ForumPost{
			{PostID: "1", Content: "old"},
			{PostID: "1", Content: "new"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(ingest.ImportResult{Created: 1, Updated: 1}))
		Expect(res.Total()).To(Equal(2))
		Expect(posts.posts).To(HaveLen(1))
		Expect(posts.posts["1"].Content).To(Equal("new"))
	})

	It("should skip posts identical to the stored copy", func() {
		post := entity.ForumPost{
			PostID:    "7",
			Content:   "same",
			Tags:      []string{"ga1"},
			CreatedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
		}
		_, err := uc.ImportPosts(ctx, []entity.ForumPost{post})
		Expect(err).NotTo(HaveOccurred())

		res, err := uc.ImportPosts(ctx, []entity.ForumPost{post})
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(ingest.ImportResult{Unchanged: 1}))
		Expect(posts.saves).To(Equal(1))
	})

	It("should refuse posts without an id", func() {
		_, err := uc.ImportPosts(ctx, []entity.ForumPost{{Content: "x"}})
		Expect(err).To(HaveOccurred())
	})

	It("should chunk and embed posts in the window together with course pages", func() {
		in := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		out := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		posts.posts["a"] = entity.ForumPost{PostID: "a", TopicID: "42", PostNumber: 3, Title: "GA1", MarkdownContent: "Use **uv**", CreatedAt: in}
		posts.posts["b"] = entity.ForumPost{PostID: "b", Title: "Old", Content: "old news", CreatedAt: out}

		result, err := uc.Build(ctx, ingest.BuildRequest{
			From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 4, 14, 23, 59, 59, 0, time.UTC),
			Pages: []entity.CoursePage{
				{Name: "docker", Title: "Docker", URL: "https://tds/#/docker", Markdown: "Containers\n\nImages"},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Model).To(Equal("mock/hashing"))
		Expect(result.Chunks).To(HaveLen(2))
		Expect(result.Vectors).To(HaveLen(2))

		Expect(result.Chunks[0]).To(Equal(entity.ChunkRecord{
			ID: 0, Text: "Use **uv**", Title: "GA1", URL: "https://forum.example/t/42/3",
		}))
		Expect(result.Chunks[1].URL).To(Equal("https://tds/#/docker"))
		Expect(result.Chunks[1].ID).To(Equal(1))
	})

	It("should fail when there is nothing to index", func() {
		_, err := uc.Build(ctx, ingest.BuildRequest{From: time.Now(), To: time.Now()})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LoadCoursePages", func() {
	It("should read markdown pages with titles and site urls", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "docker.md"), []byte("intro\n# Docker basics\nbody"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "uv.md"), []byte("no heading"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644)).To(Succeed())

		pages, err := ingest.LoadCoursePages(dir, "https://tds.s-anand.net/#/")
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(HaveLen(2))
		Expect(pages[0].Title).To(Equal("Docker basics"))
		Expect(pages[0].URL).To(Equal("https://tds.s-anand.net/#/docker"))
		Expect(pages[1].Title).To(Equal("uv"))
	})
})
