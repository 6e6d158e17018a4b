package search

import "errors"

var (
	// ErrInvalidMode is returned when the search mode is not one of
	// term, fuzzy, or semantic.
	ErrInvalidMode = errors.New("invalid search mode")

	// ErrEmptyQuery is returned when the query is blank or whitespace-only.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmbeddingUnavailable is returned when semantic mode is requested
	// but no query embedding could be produced.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrUpstreamTimeout is returned when the embedding provider exceeded
	// its allotted time.
	ErrUpstreamTimeout = errors.New("upstream timed out")

	// ErrInvalidScore indicates a backend returned a score outside [0, 1].
	// This is an internal bug, never a valid result.
	ErrInvalidScore = errors.New("score outside [0, 1]")

	// ErrContactStoreRequired is returned when a contact store is not provided.
	ErrContactStoreRequired = errors.New("contact store required")

	// ErrInteractionStoreRequired is returned when an interaction store is not provided.
	ErrInteractionStoreRequired = errors.New("interaction store required")
)
