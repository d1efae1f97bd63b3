// Package memory is an in-process catalog store. Cosine distance is computed in Go.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain/vector"
)

// Compile-time check: Store implements db.CatalogStore.
var _ db.CatalogStore = (*Store)(nil)

// Store keeps products in a map guarded by a RWMutex.
type Store struct {
	mu       sync.RWMutex
	products map[string]db.ProductRow
}

// NewStore creates an empty in-memory catalog.
func NewStore() *Store {
	return &Store{products: make(map[string]db.ProductRow)}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// InsertProduct stores a copy of the row.
func (s *Store) InsertProduct(_ context.Context, row *db.ProductRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[row.ID]; ok {
		return &db.Error{Op: db.OpInsert, Err: db.ErrRowExists}
	}
	s.products[row.ID] = cloneRow(*row)
	return nil
}

// SetEmbedding attaches a vector to an existing product.
func (s *Store) SetEmbedding(_ context.Context, id string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.products[id]
	if !ok {
		return &db.Error{Op: db.OpUpdate, Err: db.ErrRowNotFound}
	}
	row.Embedding = slices.Clone(embedding)
	s.products[id] = row
	return nil
}

// GetProduct returns a product by ID.
func (s *Store) GetProduct(_ context.Context, id string) (*db.ProductRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.products[id]
	if !ok {
		return nil, &db.Error{Op: db.OpSelect, Err: db.ErrRowNotFound}
	}
	out := cloneRow(row)
	return &out, nil
}

// ListRecent returns up to limit products, newest first.
func (s *Store) ListRecent(_ context.Context, limit int) ([]db.ProductRow, error) {
	return s.filter(limit, newestFirst, func(db.ProductRow) bool { return true }), nil
}

// ListMissingEmbedding returns up to limit products without a vector, oldest first.
func (s *Store) ListMissingEmbedding(_ context.Context, limit int) ([]db.ProductRow, error) {
	return s.filter(limit, oldestFirst, func(r db.ProductRow) bool { return len(r.Embedding) == 0 }), nil
}

// LexicalFilter returns products where every term occurs in name or description.
func (s *Store) LexicalFilter(_ context.Context, q *db.LexicalQuery) ([]db.ProductRow, error) {
	if len(q.Terms) == 0 {
		return nil, nil
	}
	terms := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		terms[i] = strings.ToLower(t)
	}
	return s.filter(q.Limit, newestFirst, func(r db.ProductRow) bool {
		name := strings.ToLower(r.Name)
		desc := strings.ToLower(r.Description)
		for _, t := range terms {
			if !strings.Contains(name, t) && !strings.Contains(desc, t) {
				return false
			}
		}
		return true
	}), nil
}

// VectorNearest scans all products with a vector and returns those within the threshold.
func (s *Store) VectorNearest(_ context.Context, q *db.VectorQuery) ([]db.VectorHit, error) {
	if q.Limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	hits := make([]db.VectorHit, 0)
	for _, row := range s.products {
		d, ok := vector.CosineDistance(q.Vector, row.Embedding)
		if !ok || d >= q.Threshold {
			continue
		}
		hit := cloneRow(row)
		hit.Embedding = nil
		hits = append(hits, db.VectorHit{Row: hit, Distance: d})
	}
	s.mu.RUnlock()

	slices.SortFunc(hits, closestFirst)
	if len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

func (s *Store) filter(limit int, order func(a, b db.ProductRow) int, keep func(db.ProductRow) bool) []db.ProductRow {
	if limit <= 0 {
		return nil
	}

	s.mu.RLock()
	rows := make([]db.ProductRow, 0, len(s.products))
	for _, r := range s.products {
		if keep(r) {
			rows = append(rows, cloneRow(r))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(rows, order)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// newestFirst orders by created_at desc, id desc.
func newestFirst(a, b db.ProductRow) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}

// closestFirst orders by distance asc, created_at desc, id asc, the same as the Postgres query.
func closestFirst(a, b db.VectorHit) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	if c := b.Row.CreatedAt.Compare(a.Row.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.Row.ID, b.Row.ID)
}

func oldestFirst(a, b db.ProductRow) int {
	return newestFirst(b, a)
}

func cloneRow(r db.ProductRow) db.ProductRow {
	r.Embedding = slices.Clone(r.Embedding)
	return r
}
