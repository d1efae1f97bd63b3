package result

import (
	"testing"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

func TestNew_NoDistance(t *testing.T) {
	p := product.Reconstruct("p1", "lamp", "blue lamp", "", 100, nil, time.Now())
	r := New(p)
	if _, ok := r.Distance(); ok {
		t.Error("lexical result must not carry a distance")
	}
	if got := r.Product(); got.ID() != "p1" {
		t.Errorf("Product().ID() = %q", got.ID())
	}
}

func TestNewWithDistance(t *testing.T) {
	p := product.Reconstruct("p1", "lamp", "blue lamp", "", 100, nil, time.Now())
	r := NewWithDistance(p, 0.42)
	d, ok := r.Distance()
	if !ok || d != 0.42 {
		t.Errorf("Distance() = %v, %v", d, ok)
	}
}

func TestFromProducts(t *testing.T) {
	ps := []product.Product{
		product.Reconstruct("a", "n", "d", "", 1, nil, time.Now()),
		product.Reconstruct("b", "n", "d", "", 1, nil, time.Now()),
	}
	rs := FromProducts(ps)
	if len(rs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rs))
	}
	if p := rs[1].Product(); p.ID() != "b" {
		t.Errorf("order not preserved: %q", p.ID())
	}
}
