package synapse

import "github.com/kailas-cloud/synapse/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrRetrievalFailed        = domain.ErrRetrievalFailed
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrFetchFailed            = domain.ErrFetchFailed
)
