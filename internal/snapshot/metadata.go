package snapshot

import (
	"fmt"

	"github.com/futig/virtual-ta/internal/entity"
)

// MetadataStore maps index positions to chunk records. It is never mutated after load.
type MetadataStore struct {
	chunks []entity.ChunkRecord
}

func NewMetadataStore(chunks []entity.ChunkRecord) *MetadataStore {
	return &MetadataStore{chunks: chunks}
}

func (m *MetadataStore) Get(position int) (entity.ChunkRecord, error) {
	if position < 0 || position >= len(m.chunks) {
		return entity.ChunkRecord{}, fmt.Errorf("%w: position %d, store has %d records",
			entity.ErrMetadataOutOfRange, position, len(m.chunks))
	}
	return m.chunks[position], nil
}

func (m *MetadataStore) Len() int {
	return len(m.chunks)
}
