package shopsearch

import (
	"context"
	"strings"

	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	domusage "github.com/kailas-cloud/shopsearch/internal/domain/usage"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// --- productUseCase mock ---

type mockProductUC struct {
	createFn  func(ctx context.Context, in productuc.CreateInput) (domproduct.Product, error)
	getFn     func(ctx context.Context, id string) (domproduct.Product, error)
	listFn    func(ctx context.Context, limit int) ([]domproduct.Product, error)
	reembedFn func(ctx context.Context, be productuc.BatchEmbedder, opts productuc.ReembedOptions) (productuc.ReembedReport, error)
}

func (m *mockProductUC) Create(ctx context.Context, in productuc.CreateInput) (domproduct.Product, error) {
	return m.createFn(ctx, in)
}

func (m *mockProductUC) Get(ctx context.Context, id string) (domproduct.Product, error) {
	return m.getFn(ctx, id)
}

func (m *mockProductUC) List(ctx context.Context, limit int) ([]domproduct.Product, error) {
	return m.listFn(ctx, limit)
}

func (m *mockProductUC) Reembed(
	ctx context.Context, be productuc.BatchEmbedder, opts productuc.ReembedOptions,
) (productuc.ReembedReport, error) {
	return m.reembedFn(ctx, be, opts)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, raw string, limit int) (searchuc.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, raw string, limit int) (searchuc.Response, error) {
	return m.searchFn(ctx, raw, limit)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- usageUseCase mock ---

type mockUsageUC struct {
	report domusage.Report
}

func (m *mockUsageUC) GetReport(context.Context, domusage.Period) domusage.Report { return m.report }

// --- public Embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchCalls int
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	m.batchCalls++
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		r, err := m.fn(ctx, t)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = r.Embedding
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

const testDims = 4

// keywordEmbed maps a few keywords onto orthogonal axes.
func keywordEmbed(_ context.Context, text string) (EmbeddingResult, error) {
	vec := make([]float32, testDims)
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "lamp"):
		vec[0] = 1
	case strings.Contains(text, "shoe"):
		vec[1] = 1
	default:
		vec[2] = 1
	}
	return EmbeddingResult{Embedding: vec, PromptTokens: 2, TotalTokens: 2}, nil
}

// --- helpers ---

func testClient(productSvc productUseCase, searchSvc searchUseCase) *Client {
	return &Client{
		productSvc: productSvc,
		searchSvc:  searchSvc,
		dimensions: testDims,
	}
}
