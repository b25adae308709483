package ai

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrBatchReleased is returned when a batch embedder is used after Release.
	ErrBatchReleased = errors.New("batch embedder released")
)
