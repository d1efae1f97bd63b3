package product

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
)

// Repository defines the storage contract for products.
type Repository interface {
	Insert(ctx context.Context, p domproduct.Product) error
	Get(ctx context.Context, id string) (domproduct.Product, error)
	ListRecent(ctx context.Context, limit int) ([]domproduct.Product, error)
	ListMissingEmbedding(ctx context.Context, limit int) ([]domproduct.Product, error)
	SetEmbedding(ctx context.Context, id string, vec []float32) error
}

// Embedder vectorizes a single product on create.
type Embedder interface {
	Embed(ctx context.Context, text string) embedding.Outcome
}

// BatchEmbedder vectorizes products during the backfill.
type BatchEmbedder interface {
	domain.BatchEmbedder
}
