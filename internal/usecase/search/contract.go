package search

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
)

// RecentLister lists the newest products (NoQuery path).
type RecentLister interface {
	ListRecent(ctx context.Context, limit int) ([]product.Product, error)
}

// LexicalRepository filters products by lowercase terms, AND across terms, name OR description.
type LexicalRepository interface {
	LexicalFilter(ctx context.Context, terms []string, limit int) ([]product.Product, error)
}

// VectorRepository returns products strictly closer than threshold to vec.
type VectorRepository interface {
	VectorNearest(ctx context.Context, vec []float32, threshold float64, limit int) ([]result.Result, error)
}

// Repository is the full storage contract of the orchestrator.
type Repository interface {
	RecentLister
	LexicalRepository
	VectorRepository
}

// Embedder vectorizes the query and classifies the outcome.
type Embedder interface {
	Embed(ctx context.Context, text string) embedding.Outcome
}
