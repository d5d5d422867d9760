package composer_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	pkgRetry "github.com/futig/virtual-ta/internal/pkg/retry"
	"github.com/futig/virtual-ta/internal/usecase/composer"
	pkghttp "github.com/futig/virtual-ta/pkg/http"
)

// scriptedLLM replays one outcome per call. Calls with neither an error nor an
// answer block until the attempt deadline.
type scriptedLLM struct {
	answers []string
	errs    []error
	prompts []string
}

func (s *scriptedLLM) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, req.Prompt)

	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.answers) && s.answers[i] != "" {
		return s.answers[i], nil
	}

	<-ctx.Done()
	return "", ctx.Err()
}

func chunk(text, title, url string) entity.ScoredChunk {
	return entity.ScoredChunk{Chunk: entity.ChunkRecord{Text: text, Title: title, URL: url}}
}

var _ = Describe("ComposerUsecase", func() {
	var (
		ctx context.Context
		llm *scriptedLLM
		uc  *composer.ComposerUsecase
	)

	BeforeEach(func() {
		ctx = context.Background()
		llm = &scriptedLLM{}
		uc = composer.NewUsecase(llm, config.LLMConnectorConfig{
			Model:       "gpt-3.5-turbo",
			Temperature: 0.2,
			Retry: pkgRetry.RetryConfig{
				Attempts: 2,
				Delay:    time.Millisecond,
				MaxDelay: time.Millisecond,
				Timeout:  50 * time.Millisecond,
			},
		}, zap.NewNop())
	})

	It("should ground the prompt in the retrieved text and question", func() {
		llm.answers = []string{"  Use pandas.  "}

		answer, err := uc.Compose(ctx, "How do I read CSV?", entity.RetrievalResult{
			chunk("pd.read_csv loads files", "Pandas", "https://tds/pandas"),
			chunk("csv module is builtin", "", "https://tds/csv"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Answer).To(Equal("Use pandas."))

		prompt := llm.prompts[0]
		Expect(prompt).To(ContainSubstring("pd.read_csv loads files\n\ncsv module is builtin"))
		Expect(prompt).To(ContainSubstring("How do I read CSV?"))
		Expect(strings.Index(prompt, "pd.read_csv")).To(BeNumerically("<", strings.Index(prompt, "How do I read CSV?")))
	})

	It("should answer with no links when nothing was retrieved", func() {
		llm.answers = []string{"I don't know."}

		answer, err := uc.Compose(ctx, "Anything?", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).NotTo(BeNil())
		Expect(answer.Links).To(BeEmpty())
	})

	It("should cite each url once in retrieval order with a fallback label", func() {
		llm.answers = []string{"ok"}

		answer, err := uc.Compose(ctx, "q", entity.RetrievalResult{
			chunk("a1", "", "https://a"),
			chunk("a2", "Later title", "https://a"),
			chunk("b", "B page", "https://b"),
			chunk("no source", "Orphan", ""),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Links).To(Equal([]entity.Link{
			{URL: "https://a", Text: entity.DefaultLinkText},
			{URL: "https://b", Text: "B page"},
		}))
	})

	It("should retry once after a transient failure", func() {
		llm.errs = []error{&pkghttp.HTTPError{StatusCode: 503}}
		llm.answers = []string{"", "second time lucky"}

		answer, err := uc.Compose(ctx, "q", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Answer).To(Equal("second time lucky"))
		Expect(llm.prompts).To(HaveLen(2))
	})

	It("should fail after two timed out attempts", func() {
		answer, err := uc.Compose(ctx, "q", nil)
		Expect(err).To(MatchError(entity.ErrCompletion))
		Expect(answer).To(BeNil())
		Expect(llm.prompts).To(HaveLen(2))
	})

	It("should not retry permanent failures", func() {
		llm.errs = []error{&pkghttp.HTTPError{StatusCode: 401}}

		_, err := uc.Compose(ctx, "q", nil)
		Expect(err).To(MatchError(entity.ErrCompletion))
		Expect(llm.prompts).To(HaveLen(1))
	})

	It("should reject an empty completion", func() {
		llm.answers = []string{"   \n"}

		_, err := uc.Compose(ctx, "q", nil)
		Expect(err).To(MatchError(entity.ErrCompletion))
	})
})
