package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/integration/common"
	pkghttp "github.com/futig/virtual-ta/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Connector sends single-turn prompts to an OpenAI-compatible chat completion API
type Connector struct {
	client *openai.Client
	logger *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		client: common.NewOpenAIClient(cfg.HTTPClientConfig),
		logger: logger,
	}
}

// Complete returns the text of the first choice. One call, no retries.
func (c *Connector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Debug(ctx, "requesting completion",
		zap.String("model", req.Model),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", translateError(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}

	content := resp.Choices[0].Message.Content
	ctxzap.Debug(ctx, "completion received",
		zap.Int("answer_length", len(content)),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return content, nil
}

// translateError maps SDK status errors onto pkghttp.HTTPError so callers can classify them.
func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion api: %w", &pkghttp.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message})
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("completion request: %w", &pkghttp.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()})
	}

	return &pkghttp.NetworkError{Err: err}
}
