package shopsearch

import (
	"context"
	"errors"
	"testing"
	"time"

	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/source"
	domusage "github.com/kailas-cloud/shopsearch/internal/domain/usage"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

var testCreatedAt = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func TestProducts_Create(t *testing.T) {
	var got productuc.CreateInput
	uc := &mockProductUC{
		createFn: func(_ context.Context, in productuc.CreateInput) (domproduct.Product, error) {
			got = in
			return domproduct.Reconstruct("p1", in.Name, in.Description, in.ImageURL, 1999, nil, testCreatedAt), nil
		},
	}
	c := testClient(uc, nil)

	p, err := c.Products().Create(context.Background(), NewProduct{
		Name: "Lamp", Description: "warm light", Price: 19.99, ImageURL: "http://img",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Lamp" || got.Price != 19.99 || got.ImageURL != "http://img" {
		t.Errorf("input = %+v", got)
	}
	if p.ID != "p1" || p.Price != 19.99 || !p.CreatedAt.Equal(testCreatedAt) {
		t.Errorf("product = %+v", p)
	}
	if p.EmbeddingStatus != EmbeddingUnavailable {
		t.Errorf("embedding status = %q", p.EmbeddingStatus)
	}
}

func TestProducts_Create_ValidationError(t *testing.T) {
	uc := &mockProductUC{
		createFn: func(context.Context, productuc.CreateInput) (domproduct.Product, error) {
			return domproduct.Product{}, ErrInvalidProduct
		},
	}
	_, err := testClient(uc, nil).Products().Create(context.Background(), NewProduct{})
	if !errors.Is(err, ErrInvalidProduct) {
		t.Errorf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestProducts_Get_NotFound(t *testing.T) {
	uc := &mockProductUC{
		getFn: func(context.Context, string) (domproduct.Product, error) {
			return domproduct.Product{}, ErrProductNotFound
		},
	}
	_, err := testClient(uc, nil).Products().Get(context.Background(), "missing")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProducts_List(t *testing.T) {
	var gotLimit int
	uc := &mockProductUC{
		listFn: func(_ context.Context, limit int) ([]domproduct.Product, error) {
			gotLimit = limit
			return []domproduct.Product{
				domproduct.Reconstruct("b", "B", "b", "", 100, []float32{1, 0, 0, 0}, testCreatedAt),
				domproduct.Reconstruct("a", "A", "a", "", 200, nil, testCreatedAt.Add(-time.Hour)),
			}, nil
		},
	}
	ps, err := testClient(uc, nil).Products().List(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 5 {
		t.Errorf("limit = %d, want 5", gotLimit)
	}
	if len(ps) != 2 || ps[0].ID != "b" || ps[1].ID != "a" {
		t.Fatalf("products = %+v", ps)
	}
	if ps[0].EmbeddingStatus != EmbeddingReady || ps[1].EmbeddingStatus != EmbeddingUnavailable {
		t.Errorf("statuses = %q, %q", ps[0].EmbeddingStatus, ps[1].EmbeddingStatus)
	}
}

func TestSearch_ConvertsResponse(t *testing.T) {
	p := domproduct.Reconstruct("p1", "Lamp", "warm", "", 500, []float32{1, 0, 0, 0}, testCreatedAt)
	uc := &mockSearchUC{
		searchFn: func(_ context.Context, raw string, limit int) (searchuc.Response, error) {
			if raw != "lamp" || limit != 3 {
				t.Errorf("search(%q, %d)", raw, limit)
			}
			return searchuc.Response{
				Results:  []result.Result{result.NewWithDistance(p, 0.25)},
				Source:   source.Vector,
				Fallback: source.None,
				Tokens:   2,
			}, nil
		},
	}

	resp, err := testClient(nil, uc).Search(context.Background(), "lamp", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Source != SourceVector || resp.Fallback != "none" || resp.Tokens != 2 {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].Product.ID != "p1" {
		t.Fatalf("hits = %+v", resp.Hits)
	}
	if d := resp.Hits[0].Distance; d == nil || *d != 0.25 {
		t.Errorf("distance = %v", d)
	}
}

func TestSearch_LexicalHitHasNoDistance(t *testing.T) {
	p := domproduct.Reconstruct("p1", "Lamp", "warm", "", 500, nil, testCreatedAt)
	uc := &mockSearchUC{
		searchFn: func(context.Context, string, int) (searchuc.Response, error) {
			return searchuc.Response{
				Results:  result.FromProducts([]domproduct.Product{p}),
				Source:   source.Lexical,
				Fallback: source.QuotaExceeded,
			}, nil
		},
	}

	resp, err := testClient(nil, uc).Search(context.Background(), "lamp", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Source != SourceLexical || resp.Fallback != "quota_exceeded" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].Distance != nil {
		t.Errorf("hits = %+v", resp.Hits)
	}
}

func TestSearch_Failed(t *testing.T) {
	uc := &mockSearchUC{
		searchFn: func(context.Context, string, int) (searchuc.Response, error) {
			return searchuc.Response{}, ErrSearchFailed
		},
	}
	_, err := testClient(nil, uc).Search(context.Background(), "lamp", 0)
	if !errors.Is(err, ErrSearchFailed) {
		t.Errorf("expected ErrSearchFailed, got %v", err)
	}
}

func TestHealth_MapsReport(t *testing.T) {
	c := testClient(nil, nil)
	c.healthSvc = &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{healthuc.ComponentDatabase: healthuc.CheckError},
	}}

	h := c.Health(context.Background())
	if h.Status != "degraded" || h.Checks["database"] != "error" {
		t.Errorf("health = %+v", h)
	}
}

func TestUsage_MapsReport(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	c := testClient(nil, nil)
	c.usageSvc = &mockUsageUC{report: domusage.NewReport(
		domusage.PeriodMonth, start, start.AddDate(0, 1, 0), 1000, 1000, 0, "reject",
	)}

	u := c.Usage(context.Background(), PeriodMonth)
	if u.Period != PeriodMonth || u.TokensUsed != 1000 || u.TokensRemaining != 0 {
		t.Errorf("usage = %+v", u)
	}
	if !u.IsExhausted {
		t.Error("expected exhausted budget")
	}
	if !u.ResetsAt.Equal(start.AddDate(0, 1, 0)) {
		t.Errorf("resets at %v", u.ResetsAt)
	}
}
