package query_test

import (
	"context"
	"encoding/base64"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/integration/embedding"
	"github.com/futig/virtual-ta/internal/integration/llm"
	pkgRetry "github.com/futig/virtual-ta/internal/pkg/retry"
	"github.com/futig/virtual-ta/internal/snapshot"
	"github.com/futig/virtual-ta/internal/usecase/composer"
	"github.com/futig/virtual-ta/internal/usecase/query"
	"github.com/futig/virtual-ta/internal/usecase/retriever"
)

type recordingRetriever struct {
	question string
	topK     int
}

func (r *recordingRetriever) Retrieve(_ context.Context, question string, topK int) (entity.RetrievalResult, error) {
	r.question = question
	r.topK = topK
	return nil, nil
}

type echoComposer struct{}

func (echoComposer) Compose(_ context.Context, question string, _ entity.RetrievalResult) (*entity.Answer, error) {
	return &entity.Answer{Answer: question, Links: []entity.Link{}}, nil
}

type fixedDescriber struct {
	text string
	err  error
	got  []byte
}

func (f *fixedDescriber) Describe(_ context.Context, image []byte) (string, error) {
	f.got = image
	return f.text, f.err
}

var queryCfg = config.QueryConfig{DefaultTopK: 5, MaxTopK: 20, MaxImageMiB: 1}

var _ = Describe("QueryUsecase", func() {
	var (
		ctx       context.Context
		rec       *recordingRetriever
		describer *fixedDescriber
		uc        *query.QueryUsecase
	)

	BeforeEach(func() {
		ctx = context.Background()
		rec = &recordingRetriever{}
		describer = &fixedDescriber{text: "screenshot of a KeyError"}
		uc = query.NewUsecase(rec, echoComposer{}, describer, queryCfg, zap.NewNop())
	})

	It("should apply the default top_k", func() {
		_, err := uc.Answer(ctx, &entity.Query{Question: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.topK).To(Equal(5))
	})

	DescribeTable("should reject invalid queries",
		func(q *entity.Query) {
			_, err := uc.Answer(ctx, q)
			Expect(err).To(MatchError(entity.ErrInvalidQuery))
		},
		Entry("nil query", nil),
		Entry("blank question", &entity.Query{Question: " "}),
		Entry("negative top_k", &entity.Query{Question: "q", TopK: -2}),
	)

	DescribeTable("should cap top_k at the configured maximum",
		func(requested, expected int) {
			_, err := uc.Answer(ctx, &entity.Query{Question: "q", TopK: requested})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.topK).To(Equal(expected))
		},
		Entry("at the maximum", 20, 20),
		Entry("above the maximum", 25, 20),
		Entry("far above the maximum", 1000, 20),
	)

	It("should reject an image that is not base64", func() {
		bad := "***"
		_, err := uc.Answer(ctx, &entity.Query{Question: "q", Image: &bad})
		Expect(err).To(MatchError(entity.ErrInvalidQuery))
	})

	It("should add the image description to the retrieval text only", func() {
		img := base64.StdEncoding.EncodeToString([]byte("png bytes"))
		answer, err := uc.Answer(ctx, &entity.Query{Question: "why?", Image: &img})
		Expect(err).NotTo(HaveOccurred())

		Expect(describer.got).To(Equal([]byte("png bytes")))
		Expect(rec.question).To(Equal("why?\n\nscreenshot of a KeyError"))
		Expect(answer.Answer).To(Equal("why?"))
	})

	It("should accept data URLs", func() {
		img := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))
		_, err := uc.Answer(ctx, &entity.Query{Question: "why?", Image: &img})
		Expect(err).NotTo(HaveOccurred())
		Expect(describer.got).To(Equal([]byte("png")))
	})

	It("should still answer when the describer fails", func() {
		describer.err = errors.New("vision down")
		img := base64.StdEncoding.EncodeToString([]byte("png"))

		_, err := uc.Answer(ctx, &entity.Query{Question: "why?", Image: &img})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.question).To(Equal("why?"))
	})

	It("should ignore images with the default describer", func() {
		uc = query.NewUsecase(rec, echoComposer{}, nil, queryCfg, zap.NewNop())
		img := base64.StdEncoding.EncodeToString([]byte("png"))

		_, err := uc.Answer(ctx, &entity.Query{Question: "why?", Image: &img})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.question).To(Equal("why?"))
	})
})

var _ = Describe("Question answering round trip", func() {
	It("should cite the chunk nearest to the question", func() {
		logger := zap.NewNop()
		embedder := embedding.NewMockConnector(64, logger)

		chunks := []entity.ChunkRecord{
			{ID: 0, Text: "Docker containers package applications", Title: "Docker", URL: "https://tds/docker"},
			{ID: 1, Text: "The project deadline is in April", Title: "Deadlines", URL: "https://tds/deadline"},
			{ID: 2, Text: "Use uv to manage Python packages", Title: "uv", URL: "https://tds/uv"},
		}
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := embedder.Embed(context.Background(), texts)
		Expect(err).NotTo(HaveOccurred())

		retrieverUC := retriever.NewUsecase(embedder, snapshot.NewFlatIndex(vectors, 64), snapshot.NewMetadataStore(chunks), logger)
		composerUC := composer.NewUsecase(llm.NewMockConnector(logger), config.LLMConnectorConfig{
			Model: "mock",
			Retry: *pkgRetry.DefaultRetryConfig(),
		}, logger)
		uc := query.NewUsecase(retrieverUC, composerUC, nil, queryCfg, logger)

		answer, err := uc.Answer(context.Background(), &entity.Query{Question: "When is the project deadline", TopK: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Answer).To(ContainSubstring("When is the project deadline"))
		Expect(answer.Links).NotTo(BeEmpty())
		Expect(answer.Links[0].URL).To(Equal("https://tds/deadline"))
		Expect(len(answer.Links)).To(BeNumerically("<=", 2))
	})
})
