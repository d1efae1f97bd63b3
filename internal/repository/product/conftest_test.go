package product

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	insertFn       func(ctx context.Context, row *db.ProductRow) error
	setEmbeddingFn func(ctx context.Context, id string, vec []float32) error
	getFn          func(ctx context.Context, id string) (*db.ProductRow, error)
	listRecentFn   func(ctx context.Context, limit int) ([]db.ProductRow, error)
	listMissingFn  func(ctx context.Context, limit int) ([]db.ProductRow, error)
	lexicalFn      func(ctx context.Context, q *db.LexicalQuery) ([]db.ProductRow, error)
	nearestFn      func(ctx context.Context, q *db.VectorQuery) ([]db.VectorHit, error)
}

func (m *mockStore) InsertProduct(ctx context.Context, row *db.ProductRow) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, row)
	}
	return nil
}

func (m *mockStore) SetEmbedding(ctx context.Context, id string, vec []float32) error {
	if m.setEmbeddingFn != nil {
		return m.setEmbeddingFn(ctx, id, vec)
	}
	return nil
}

func (m *mockStore) GetProduct(ctx context.Context, id string) (*db.ProductRow, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, db.ErrRowNotFound
}

func (m *mockStore) ListRecent(ctx context.Context, limit int) ([]db.ProductRow, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockStore) ListMissingEmbedding(ctx context.Context, limit int) ([]db.ProductRow, error) {
	if m.listMissingFn != nil {
		return m.listMissingFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockStore) LexicalFilter(ctx context.Context, q *db.LexicalQuery) ([]db.ProductRow, error) {
	if m.lexicalFn != nil {
		return m.lexicalFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) VectorNearest(ctx context.Context, q *db.VectorQuery) ([]db.VectorHit, error) {
	if m.nearestFn != nil {
		return m.nearestFn(ctx, q)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

var testTime = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

func testRow(id string) db.ProductRow {
	return db.ProductRow{
		ID:          id,
		Name:        "Lamp " + id,
		Description: "blue lamp",
		ImageURL:    "https://img/" + id,
		PriceCents:  1250,
		CreatedAt:   testTime,
	}
}
