package entity

import "errors"

// Domain errors
var (
	// Query errors
	ErrInvalidQuery = errors.New("invalid query")

	// Retrieval errors
	ErrEmbedding          = errors.New("embedding failed")
	ErrIndexUnavailable   = errors.New("index unavailable")
	ErrMetadataOutOfRange = errors.New("metadata position out of range")

	// Completion errors
	ErrCompletion = errors.New("completion failed")

	// Ingestion errors
	ErrPostNotFound = errors.New("post not found")
)
