package query

import (
	"context"

	"github.com/futig/virtual-ta/internal/entity"
)

type QueryUsecase interface {
	Answer(ctx context.Context, q *entity.Query) (*entity.Answer, error)
}
