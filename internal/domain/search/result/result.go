package result

import "github.com/kailas-cloud/shopsearch/internal/domain/product"

// Result is a single search hit: a product plus the vector distance when it came from vector search.
type Result struct {
	product     product.Product
	distance    float64
	hasDistance bool
}

// New creates a result without distance (recent or lexical source).
func New(p product.Product) Result {
	return Result{product: p}
}

// NewWithDistance creates a vector search result.
func NewWithDistance(p product.Product, distance float64) Result {
	return Result{product: p, distance: distance, hasDistance: true}
}

// FromProducts wraps products as distance-less results.
func FromProducts(ps []product.Product) []Result {
	out := make([]Result, len(ps))
	for i, p := range ps {
		out[i] = New(p)
	}
	return out
}

// Product returns the matched product.
func (r Result) Product() product.Product { return r.product }

// Distance returns the cosine distance; ok is false for non-vector results.
func (r Result) Distance() (float64, bool) { return r.distance, r.hasDistance }
