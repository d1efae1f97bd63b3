package chi

import (
	"time"

	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	domusage "github.com/kailas-cloud/shopsearch/internal/domain/usage"
)

// ProductResponse is the wire form of a product (and of a search hit, with distance).
type ProductResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	Description     string    `json:"description"`
	ImageURL        *string   `json:"imageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	EmbeddingStatus string    `json:"embeddingStatus"`
	Distance        *float64  `json:"distance,omitempty"`
}

// CreateProductRequest is the body of POST /products. Pointers tell "missing" from zero.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// UsageResponse is the body of GET /usage. tokensRemaining is -1 when unlimited.
type UsageResponse struct {
	Period          string    `json:"period"`
	PeriodStart     time.Time `json:"periodStart"`
	ResetsAt        time.Time `json:"resetsAt"`
	TokensUsed      int64     `json:"tokensUsed"`
	TokensLimit     int64     `json:"tokensLimit"`
	TokensRemaining int64     `json:"tokensRemaining"`
	Exhausted       bool      `json:"exhausted"`
	Action          string    `json:"action,omitempty"`
}

func usageToResponse(r domusage.Report) UsageResponse {
	return UsageResponse{
		Period:          string(r.Period()),
		PeriodStart:     r.PeriodStart(),
		ResetsAt:        r.ResetsAt(),
		TokensUsed:      r.TokensUsed(),
		TokensLimit:     r.TokensLimit(),
		TokensRemaining: r.TokensRemaining(),
		Exhausted:       r.Exhausted(),
		Action:          r.Action(),
	}
}

func productToResponse(p domproduct.Product) ProductResponse {
	resp := ProductResponse{
		ID:              p.ID(),
		Name:            p.Name(),
		Price:           p.Price(),
		Description:     p.Description(),
		CreatedAt:       p.CreatedAt(),
		EmbeddingStatus: string(p.EmbeddingStatus()),
	}
	if u := p.ImageURL(); u != "" {
		resp.ImageURL = &u
	}
	return resp
}

func resultToResponse(r result.Result) ProductResponse {
	resp := productToResponse(r.Product())
	if d, ok := r.Distance(); ok {
		resp.Distance = &d
	}
	return resp
}

func productsToResponse(ps []domproduct.Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i, p := range ps {
		out[i] = productToResponse(p)
	}
	return out
}

func resultsToResponse(rs []result.Result) []ProductResponse {
	out := make([]ProductResponse, len(rs))
	for i, r := range rs {
		out[i] = resultToResponse(r)
	}
	return out
}
