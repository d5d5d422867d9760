package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/pkg/logger"
	pkgRetry "github.com/futig/virtual-ta/internal/pkg/retry"
	pkghttp "github.com/futig/virtual-ta/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ComposerUsecase builds the grounded prompt, calls the LLM and formats the answer
type ComposerUsecase struct {
	llm         LLMConnector
	model       string
	temperature float32
	maxTokens   int
	retryCfg    pkgRetry.RetryConfig
	logger      *zap.Logger
}

func NewUsecase(
	llm LLMConnector,
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *ComposerUsecase {
	return &ComposerUsecase{
		llm:         llm,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		retryCfg:    cfg.Retry,
		logger:      logger,
	}
}

// Compose answers the question from the retrieved chunks. An empty retrieval still
// produces an answer, with no links.
func (uc *ComposerUsecase) Compose(ctx context.Context, question string, retrieved entity.RetrievalResult) (*entity.Answer, error) {
	ctx = logger.WithAction(ctx, "compose_answer")

	req := &entity.CompletionRequest{
		Model:       uc.model,
		Prompt:      buildPrompt(question, buildContext(retrieved)),
		Temperature: uc.temperature,
		MaxTokens:   uc.maxTokens,
	}

	text, err := uc.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	return &entity.Answer{
		Answer: text,
		Links:  buildLinks(retrieved),
	}, nil
}

func (uc *ComposerUsecase) complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	attempt := 0

	text, err := retry.DoWithData(
		func() (string, error) {
			attempt++
			attemptCtx, cancel := context.WithTimeout(ctx, uc.retryCfg.Timeout)
			defer cancel()

			out, err := uc.llm.Complete(attemptCtx, req)
			if err != nil {
				ctxzap.Warn(ctx, "completion attempt failed",
					zap.Int("attempt", attempt),
					zap.Bool("transient", pkghttp.IsTransient(err)),
					zap.Error(err),
				)
				return "", err
			}
			return out, nil
		},
		uc.retryCfg.ToRetryOptions(ctx, pkghttp.IsTransient)...,
	)
	if err != nil {
		return "", fmt.Errorf("%w: after %d attempt(s): %v", entity.ErrCompletion, attempt, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", entity.ErrCompletion)
	}

	ctxzap.Debug(ctx, "completion received",
		zap.Int("attempts", attempt),
		zap.Int("answer_len", len(text)),
	)
	return text, nil
}
