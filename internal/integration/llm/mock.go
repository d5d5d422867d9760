package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/virtual-ta/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without calling any API, for local runs without credentials
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// Complete echoes the question found in the prompt
func (m *MockConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] completing prompt",
		zap.String("model", req.Model),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	question := req.Prompt
	if i := strings.LastIndex(req.Prompt, "Question:"); i >= 0 {
		question = strings.TrimSpace(req.Prompt[i+len("Question:"):])
		if j := strings.Index(question, "\n"); j >= 0 {
			question = question[:j]
		}
	}

	return fmt.Sprintf("This is a mock answer to: %s", question), nil
}
