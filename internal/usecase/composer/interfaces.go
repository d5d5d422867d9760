package composer

import (
	"context"

	"github.com/futig/virtual-ta/internal/entity"
)

type LLMConnector interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) (string, error)
}
