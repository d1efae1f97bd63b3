package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/domain/vector"
)

// VectorSearcher ranks products by cosine distance to the query vector.
type VectorSearcher struct {
	repo       VectorRepository
	dimensions int
}

// NewVectorSearcher creates a vector searcher for vectors of the given dimension.
func NewVectorSearcher(repo VectorRepository, dimensions int) *VectorSearcher {
	return &VectorSearcher{repo: repo, dimensions: dimensions}
}

// Search returns up to limit results with distance < threshold, closest first.
// Threshold and ordering are re-applied to the store output so every backend ranks the same way.
func (s *VectorSearcher) Search(
	ctx context.Context, vec []float32, limit int, threshold float64,
) ([]result.Result, error) {
	if err := vector.CheckDimensions(vec, s.dimensions); err != nil {
		return nil, fmt.Errorf("query vector: %w", err)
	}
	if limit <= 0 || vector.IsZero(vec) {
		return nil, nil
	}

	hits, err := s.repo.VectorNearest(ctx, vec, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("vector nearest: %w", err)
	}

	out := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		d, ok := h.Distance()
		if !ok || !(d < threshold) { // NaN never passes
			continue
		}
		out = append(out, h)
	}

	slices.SortStableFunc(out, closestFirst)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// closestFirst orders by distance asc, then createdAt desc, then id asc.
func closestFirst(a, b result.Result) int {
	da, _ := a.Distance()
	db, _ := b.Distance()
	if c := cmp.Compare(da, db); c != 0 {
		return c
	}
	pa, pb := a.Product(), b.Product()
	if c := pb.CreatedAt().Compare(pa.CreatedAt()); c != 0 {
		return c
	}
	return cmp.Compare(pa.ID(), pb.ID())
}
