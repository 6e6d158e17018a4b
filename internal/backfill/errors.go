package backfill

import "errors"

var (
	// ErrStoreRequired is returned when an interaction store is not provided.
	ErrStoreRequired = errors.New("interaction store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
