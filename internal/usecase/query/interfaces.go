package query

import (
	"context"

	"github.com/futig/virtual-ta/internal/entity"
)

type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) (entity.RetrievalResult, error)
}

type Composer interface {
	Compose(ctx context.Context, question string, retrieved entity.RetrievalResult) (*entity.Answer, error)
}

// ImageDescriber turns an attached image into text that can be searched
type ImageDescriber interface {
	Describe(ctx context.Context, image []byte) (string, error)
}
