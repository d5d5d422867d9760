package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/integration/embedding"
)

var _ = Describe("OllamaConnector", func() {
	var (
		server    *httptest.Server
		reply     func(input []string) any
		status    int
		connector *embedding.OllamaConnector
	)

	BeforeEach(func() {
		status = http.StatusOK
		reply = func(input []string) any {
			out := make([][]float32, len(input))
			for i := range input {
				out[i] = []float32{float32(i), 1, 0}
			}
			return map[string]any{"embeddings": out}
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/embed"))

			var req struct {
				Model string   `json:"model"`
				Input []string `json:"input"`
			}
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			Expect(req.Model).To(Equal("all-minilm"))

			w.WriteHeader(status)
			json.NewEncoder(w).Encode(reply(req.Input))
		}))

		cfg := config.EmbeddingConnectorConfig{Model: "all-minilm", Dimension: 3}
		cfg.Url = server.URL
		connector = embedding.NewOllamaConnector(cfg, zap.NewNop())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should return one vector per text in order", func() {
		vecs, err := connector.Embed(context.Background(), []string{"a", "b"})
		Expect(err).NotTo(HaveOccurred())
		Expect(vecs).To(Equal([]entity.Vector{{0, 1, 0}, {1, 1, 0}}))
	})

	It("should fail when the server returns too few vectors", func() {
		reply = func([]string) any {
			return map[string]any{"embeddings": [][]float32{{0, 1, 0}}}
		}
		_, err := connector.Embed(context.Background(), []string{"a", "b"})
		Expect(err).To(MatchError(entity.ErrEmbedding))
	})

	It("should fail when the dimension is wrong", func() {
		reply = func([]string) any {
			return map[string]any{"embeddings": [][]float32{{0, 1}}}
		}
		_, err := connector.Embed(context.Background(), []string{"a"})
		Expect(err).To(MatchError(entity.ErrEmbedding))
	})

	It("should fail when the server errors", func() {
		status = http.StatusInternalServerError
		_, err := connector.Embed(context.Background(), []string{"a"})
		Expect(err).To(MatchError(entity.ErrEmbedding))
	})
})
