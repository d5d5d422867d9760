package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	pkghttp "github.com/futig/virtual-ta/pkg/http"
)

var _ = Describe("Connector", func() {
	var (
		server    *httptest.Server
		handler   http.HandlerFunc
		connector *pkghttp.Connector
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		connector = pkghttp.NewConnector(
			&pkghttp.ConnectorConfig{BaseURL: server.URL, Logger: zap.NewNop()},
			pkghttp.WithAuthToken("secret"),
			pkghttp.WithRequestLogging(),
		)
	})

	AfterEach(func() {
		server.Close()
	})

	It("should send JSON with the bearer token and decode the reply", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer secret"))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))

			var body map[string]string
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			w.Write([]byte(`{"echo":"` + body["msg"] + `"}`))
		}

		var out struct{ Echo string }
		err := connector.DoRequest(context.Background(), http.MethodPost, "/echo", map[string]string{"msg": "hi"}, &out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Echo).To(Equal("hi"))
	})

	It("should return an HTTPError for non-2xx replies", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("overloaded"))
		}

		err := connector.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)
		var httpErr *pkghttp.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
		Expect(httpErr.Message).To(Equal("overloaded"))
		Expect(pkghttp.IsTransient(err)).To(BeTrue())
	})

	It("should return a NetworkError when the server is gone", func() {
		server.Close()

		err := connector.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)
		var netErr *pkghttp.NetworkError
		Expect(errors.As(err, &netErr)).To(BeTrue())
	})
})
