package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/virtual-ta/internal/config"
	"github.com/futig/virtual-ta/internal/entity"
)

const maxQuestionChars = 4000

// Validator checks incoming queries before they reach the usecase
type Validator struct {
	cfg config.QueryConfig
}

func NewQueryValidator(cfg config.QueryConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) ValidateQuery(q *entity.Query) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: question is required", entity.ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(q.Question); n > maxQuestionChars {
		return fmt.Errorf("%w: question is %d characters (max %d)", entity.ErrInvalidQuery, n, maxQuestionChars)
	}
	if q.TopK < 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", entity.ErrInvalidQuery, q.TopK)
	}
	if q.Image != nil && len(*q.Image) > v.MaxImageEncodedBytes() {
		return fmt.Errorf("%w: image exceeds %d MiB", entity.ErrInvalidQuery, v.cfg.MaxImageMiB)
	}
	return nil
}

// MaxImageEncodedBytes is the base64 length of the largest accepted image
func (v *Validator) MaxImageEncodedBytes() int {
	return (v.cfg.MaxImageMiB<<20 + 2) / 3 * 4
}

// MaxBodyBytes bounds a query request body
func (v *Validator) MaxBodyBytes() int64 {
	return int64(v.MaxImageEncodedBytes()) + 64<<10
}
