package product

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
)

// --- Mocks ---

type mockRepo struct {
	mu        sync.Mutex
	products  map[string]domproduct.Product
	insertErr error
	listErr   error
	setErr    error
	lastLimit int
}

func newMockRepo(ps ...domproduct.Product) *mockRepo {
	m := &mockRepo{products: make(map[string]domproduct.Product)}
	for _, p := range ps {
		m.products[p.ID()] = p
	}
	return m
}

func (m *mockRepo) Insert(_ context.Context, p domproduct.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.products[p.ID()] = p
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domproduct.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (m *mockRepo) ListRecent(_ context.Context, limit int) ([]domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(limit, func(domproduct.Product) bool { return true }, true), nil
}

func (m *mockRepo) ListMissingEmbedding(_ context.Context, limit int) ([]domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(limit, func(p domproduct.Product) bool { return len(p.Vector()) == 0 }, false), nil
}

func (m *mockRepo) SetEmbedding(_ context.Context, id string, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	p, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	m.products[id] = p.WithEmbedding(vec)
	return nil
}

func (m *mockRepo) sorted(limit int, keep func(domproduct.Product) bool, newest bool) []domproduct.Product {
	var out []domproduct.Product
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domproduct.Product) int {
		c := a.CreatedAt().Compare(b.CreatedAt())
		if c == 0 {
			c = strings.Compare(a.ID(), b.ID())
		}
		if newest {
			return -c
		}
		return c
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *mockRepo) withVector() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.products {
		if len(p.Vector()) > 0 {
			n++
		}
	}
	return n
}

type mockEmbedder struct {
	outcome  embedding.Outcome
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) embedding.Outcome {
	m.lastText = text
	return m.outcome
}

// mockBatchEmbedder returns a unit vector per text; texts containing failOn get a provider error
// for their whole chunk, and quotaAfter > 0 rejects calls after that many successful ones.
// A chunk with a text containing hangOn blocks until its context is done.
type mockBatchEmbedder struct {
	mu         sync.Mutex
	dims       int
	failOn     string
	hangOn     string
	quotaAfter int
	calls      int
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	for _, t := range texts {
		if m.hangOn != "" && strings.Contains(t, m.hangOn) {
			<-ctx.Done()
			return domain.BatchEmbeddingResult{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quotaAfter > 0 && m.calls >= m.quotaAfter {
		return domain.BatchEmbeddingResult{}, domain.ErrEmbeddingQuotaExceeded
	}
	m.calls++
	for _, t := range texts {
		if m.failOn != "" && strings.Contains(t, m.failOn) {
			return domain.BatchEmbeddingResult{}, domain.ErrEmbeddingProviderError
		}
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts)), TotalTokens: len(texts)}
	for i := range texts {
		v := make([]float32, m.dims)
		v[0] = 1
		out.Embeddings[i] = v
	}
	return out, nil
}

// --- Fixtures ---

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func mkProduct(id, name string, age int) domproduct.Product {
	return domproduct.Reconstruct(id, name, "description of "+name, "", 1000, nil,
		baseTime.Add(-time.Duration(age)*time.Minute))
}
