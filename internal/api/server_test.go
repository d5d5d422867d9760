package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/futig/virtual-ta/internal/api"
	healthapi "github.com/futig/virtual-ta/internal/api/health"
	queryapi "github.com/futig/virtual-ta/internal/api/query"
	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/pkg/validator"
)

type stubAnswerer struct {
	calls int
}

func (s *stubAnswerer) Answer(context.Context, *entity.Query) (*entity.Answer, error) {
	s.calls++
	return &entity.Answer{Answer: "ok"}, nil
}

var _ = Describe("Router", func() {
	var (
		uc     *stubAnswerer
		router http.Handler
	)

	BeforeEach(func() {
		uc = &stubAnswerer{}
		v := validator.NewQueryValidator(config.QueryConfig{DefaultTopK: 5, MaxTopK: 20, MaxImageMiB: 1})
		router = api.SetupRouter(
			queryapi.NewHandler(uc, v),
			healthapi.NewHandler(3, "build-1", "flat"),
			5*time.Second,
			zap.NewNop(),
		)
	})

	It("should answer a CORS preflight without reaching the handler", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/", nil)
		req.Header.Set("Origin", "https://student.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(Equal(http.MethodPost))
		Expect(uc.calls).To(BeZero())
	})

	It("should allow cross-origin queries", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/", strings.NewReader(`{"question":"q"}`))
		req.Header.Set("Origin", "https://student.example")
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(uc.calls).To(Equal(1))
	})

	It("should report health", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"build-1"`))
	})
})
