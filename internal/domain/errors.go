package domain

import "errors"

var (
	// ErrInvalidRequest signals malformed caller input (empty user, bad limit, unknown item type).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized signals a failed auth check.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrVectorDimMismatch signals vectors of different dimensionality in one comparison.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRetrievalFailed signals that every search path failed.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrFetchFailed signals that a submitted URL could not be fetched or parsed.
	ErrFetchFailed = errors.New("failed to fetch url content")
)
