package shopsearch

import "github.com/kailas-cloud/shopsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrProductNotFound        = domain.ErrProductNotFound
	ErrInvalidProduct         = domain.ErrInvalidProduct
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbeddingDisabled      = domain.ErrEmbeddingDisabled
	ErrSearchFailed           = domain.ErrSearchFailed
)
