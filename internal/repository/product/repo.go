package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// store is the consumer interface for catalog operations (ISP).
type store interface {
	db.ProductReader
	db.ProductWriter
	db.LexicalFilterer
	db.VectorNearester
}

// Repo implements the product and search repositories of the use-case layer.
type Repo struct {
	store store
}

// New creates a product repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert persists a new product.
func (r *Repo) Insert(ctx context.Context, p domproduct.Product) error {
	row := toRow(p)
	if err := r.store.InsertProduct(ctx, &row); err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID(), err)
	}
	return nil
}

// Get returns a product by ID. Missing rows map to domain.ErrProductNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domproduct.Product, error) {
	row, err := r.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrRowNotFound) {
			return domproduct.Product{}, domain.ErrProductNotFound
		}
		return domproduct.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return fromRow(row), nil
}

// ListRecent returns the newest products.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]domproduct.Product, error) {
	rows, err := r.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}
	return fromRows(rows), nil
}

// ListMissingEmbedding returns products awaiting an embedding, oldest first.
func (r *Repo) ListMissingEmbedding(ctx context.Context, limit int) ([]domproduct.Product, error) {
	rows, err := r.store.ListMissingEmbedding(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list products without embedding: %w", err)
	}
	return fromRows(rows), nil
}

// SetEmbedding attaches a vector to a stored product.
func (r *Repo) SetEmbedding(ctx context.Context, id string, vec []float32) error {
	if err := r.store.SetEmbedding(ctx, id, vec); err != nil {
		if errors.Is(err, db.ErrRowNotFound) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("set embedding %s: %w", id, err)
	}
	return nil
}

// LexicalFilter returns products matching every term, newest first.
func (r *Repo) LexicalFilter(ctx context.Context, terms []string, limit int) ([]domproduct.Product, error) {
	rows, err := r.store.LexicalFilter(ctx, &db.LexicalQuery{Terms: terms, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("lexical filter: %w", err)
	}
	return fromRows(rows), nil
}

// VectorNearest returns products within the cosine distance threshold.
func (r *Repo) VectorNearest(
	ctx context.Context, vec []float32, threshold float64, limit int,
) ([]result.Result, error) {
	hits, err := r.store.VectorNearest(ctx, &db.VectorQuery{
		Vector:    vec,
		Threshold: threshold,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("vector nearest: %w", err)
	}

	results := make([]result.Result, len(hits))
	for i := range hits {
		results[i] = result.NewWithDistance(fromRow(&hits[i].Row), hits[i].Distance)
	}
	return results, nil
}

func toRow(p domproduct.Product) db.ProductRow {
	return db.ProductRow{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		ImageURL:    p.ImageURL(),
		PriceCents:  p.PriceCents(),
		Embedding:   p.Vector(),
		CreatedAt:   p.CreatedAt(),
	}
}

func fromRow(row *db.ProductRow) domproduct.Product {
	return domproduct.Reconstruct(
		row.ID, row.Name, row.Description, row.ImageURL,
		row.PriceCents, row.Embedding, row.CreatedAt.UTC(),
	)
}

func fromRows(rows []db.ProductRow) []domproduct.Product {
	out := make([]domproduct.Product, len(rows))
	for i := range rows {
		out[i] = fromRow(&rows[i])
	}
	return out
}
