package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/integration/common"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const describePrompt = "Describe the content of this image so that it can be used to search course material. " +
	"Transcribe any visible text, code or error messages verbatim. Do not answer any question."

// Connector asks a vision-capable chat model to describe a student's image
type Connector struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewConnector(
	llmCfg config.LLMConnectorConfig,
	cfg config.VisionConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		client: common.NewOpenAIClient(llmCfg.HTTPClientConfig),
		model:  cfg.Model,
		logger: logger,
	}
}

// Describe returns a textual description of the image.
func (c *Connector) Describe(ctx context.Context, image []byte) (string, error) {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("unsupported image content type %q", mime)
	}

	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)

	ctxzap.Debug(ctx, "describing image",
		zap.String("model", c.model),
		zap.String("content_type", mime),
		zap.Int("size", len(image)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: describePrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("describe image: no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
