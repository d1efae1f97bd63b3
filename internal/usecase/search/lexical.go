package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
)

// LexicalSearcher does case-insensitive substring matching over name and description.
// No relevance scoring: results are newest first.
type LexicalSearcher struct {
	repo LexicalRepository
}

// NewLexicalSearcher creates a lexical searcher.
func NewLexicalSearcher(repo LexicalRepository) *LexicalSearcher {
	return &LexicalSearcher{repo: repo}
}

// Search returns up to limit products matching every term of q.
// A query without terms matches nothing.
func (s *LexicalSearcher) Search(ctx context.Context, q query.Query, limit int) ([]product.Product, error) {
	if q.IsEmpty() || limit <= 0 {
		return nil, nil
	}

	products, err := s.repo.LexicalFilter(ctx, q.Terms(), limit)
	if err != nil {
		return nil, fmt.Errorf("lexical filter: %w", err)
	}

	slices.SortStableFunc(products, newestFirst)
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// newestFirst orders by createdAt desc, then id desc.
func newestFirst(a, b product.Product) int {
	if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
		return c
	}
	return cmp.Compare(b.ID(), a.ID())
}
