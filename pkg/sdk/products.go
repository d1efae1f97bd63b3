package shopsearch

import (
	"context"
	"fmt"
	"time"

	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
)

// ProductService manages catalog items.
type ProductService struct {
	svc productUseCase
	obs *observer
}

// Create validates and stores a product. An embedding failure does not fail the call:
// the product is stored with EmbeddingUnavailable and found by keyword search.
func (s *ProductService) Create(ctx context.Context, p NewProduct) (_ Product, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product_create", start, err) }()

	created, err := s.svc.Create(ctx, productuc.CreateInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	})
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return productFromDomain(created), nil
}

// Get returns a product by ID or ErrProductNotFound.
func (s *ProductService) Get(ctx context.Context, id string) (_ Product, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product_get", start, err) }()

	p, err := s.svc.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return productFromDomain(p), nil
}

// List returns the most recent products. limit <= 0 uses the default.
func (s *ProductService) List(ctx context.Context, limit int) (_ []Product, err error) {
	start := time.Now()
	defer func() { s.obs.observe("product_list", start, err) }()

	ps, err := s.svc.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = productFromDomain(p)
	}
	return out, nil
}

func productFromDomain(p domproduct.Product) Product {
	return Product{
		ID:              p.ID(),
		Name:            p.Name(),
		Description:     p.Description(),
		ImageURL:        p.ImageURL(),
		Price:           p.Price(),
		CreatedAt:       p.CreatedAt(),
		EmbeddingStatus: EmbeddingStatus(p.EmbeddingStatus()),
	}
}
