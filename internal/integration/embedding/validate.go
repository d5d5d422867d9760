package embedding

import (
	"fmt"

	"github.com/futig/virtual-ta/internal/entity"
)

// checkVectors enforces one vector per input text, each of the expected dimension.
func checkVectors(vectors []entity.Vector, want, dimension int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d vectors for %d texts", entity.ErrEmbedding, len(vectors), want)
	}

	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d", entity.ErrEmbedding, i, len(v), dimension)
		}
	}

	return nil
}
