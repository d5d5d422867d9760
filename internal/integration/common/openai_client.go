package common

import (
	"github.com/futig/virtual-ta/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAIClient builds a go-openai client that shares the connector transport settings.
func NewOpenAIClient(cfg config.HTTPClientConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.Token)
	if cfg.Url != "" {
		clientCfg.BaseURL = cfg.Url
	}
	clientCfg.HTTPClient = NewSDKClient(cfg)

	return openai.NewClientWithConfig(clientCfg)
}
