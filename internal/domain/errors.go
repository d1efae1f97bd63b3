package domain

import "errors"

var (
	// ErrProductNotFound signals a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct signals a product that failed validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidQuery signals malformed search parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingQuotaExceeded signals an exhausted embedding quota: provider 429,
	// billing/capacity errors, or a local token budget in reject mode.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingDisabled signals that no embedding provider is configured.
	ErrEmbeddingDisabled = errors.New("embedding disabled")

	// ErrSearchFailed signals that no search source could produce a result.
	ErrSearchFailed = errors.New("search failed")
)
