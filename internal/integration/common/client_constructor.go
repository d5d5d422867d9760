package common

import (
	"net/http"

	"github.com/futig/virtual-ta/internal/config"
	pkgHTTP "github.com/futig/virtual-ta/pkg/http"
	"go.uber.org/zap"
)

func httpOptions(cfg config.HTTPClientConfig) []pkgHTTP.HttpOpts {
	return []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}
}

// NewBaseConnector builds a JSON connector that authenticates with the configured bearer token.
func NewBaseConnector(cfg config.HTTPClientConfig, baseURL string, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: baseURL,
	}

	opts := append(httpOptions(cfg), pkgHTTP.WithAuthToken(cfg.Token))
	return pkgHTTP.NewConnector(connCfg, opts...)
}

// NewSDKClient builds an *http.Client for SDKs that set their own auth headers.
func NewSDKClient(cfg config.HTTPClientConfig) *http.Client {
	return pkgHTTP.NewClient(httpOptions(cfg)...)
}
