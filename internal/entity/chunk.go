package entity

// ChunkRecord is a retrievable unit of source text with citation metadata.
// ID is the record's position in the index snapshot.
type ChunkRecord struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Vector is a fixed-length embedding of a piece of text.
type Vector []float32

// Neighbor is a single vector index hit. Score is the L2 distance to the query,
// lower is closer.
type Neighbor struct {
	Position int
	Score    float32
}

// ScoredChunk pairs a chunk record with its distance to the query.
type ScoredChunk struct {
	Chunk ChunkRecord
	Score float32
}

// RetrievalResult is ordered closest first.
type RetrievalResult []ScoredChunk
