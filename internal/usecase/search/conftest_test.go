package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
)

// --- Mocks ---

type mockRepo struct {
	recent     []product.Product
	recentErr  error
	lexical    []product.Product
	lexicalErr error
	vector     []result.Result
	vectorErr  error

	recentCalled  bool
	lexicalCalled bool
	vectorCalled  bool
	lastTerms     []string
	lastLimit     int
	lastThreshold float64
}

func (m *mockRepo) ListRecent(_ context.Context, limit int) ([]product.Product, error) {
	m.recentCalled = true
	m.lastLimit = limit
	return m.recent, m.recentErr
}

func (m *mockRepo) LexicalFilter(_ context.Context, terms []string, limit int) ([]product.Product, error) {
	m.lexicalCalled = true
	m.lastTerms = terms
	m.lastLimit = limit
	return m.lexical, m.lexicalErr
}

func (m *mockRepo) VectorNearest(
	_ context.Context, _ []float32, threshold float64, limit int,
) ([]result.Result, error) {
	m.vectorCalled = true
	m.lastThreshold = threshold
	m.lastLimit = limit
	return m.vector, m.vectorErr
}

type mockEmbedder struct {
	outcome  embedding.Outcome
	called   bool
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) embedding.Outcome {
	m.called = true
	m.lastText = text
	return m.outcome
}

// --- Fixtures ---

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// mkProduct creates a product created `age` minutes before baseTime.
func mkProduct(id, name, description string, age int) product.Product {
	return product.Reconstruct(id, name, description, "", 1999, nil, baseTime.Add(-time.Duration(age)*time.Minute))
}

func testVector(dims int) []float32 {
	v := make([]float32, dims)
	v[0] = 1
	return v
}

func ids(results []result.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Product().ID()
	}
	return out
}

func productIDs(ps []product.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}
	return out
}
