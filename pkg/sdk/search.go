package shopsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// Search finds products for a free-text query. A blank query returns the most
// recent products. limit <= 0 uses the default; larger values are capped.
func (c *Client) Search(ctx context.Context, query string, limit int) (_ SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	resp, err := c.searchSvc.Search(ctx, query, limit)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	out := searchResponseFromDomain(resp)
	c.obs.observeSearch(out)
	return out, nil
}

func searchResponseFromDomain(resp searchuc.Response) SearchResponse {
	hits := make([]SearchHit, len(resp.Results))
	for i, r := range resp.Results {
		hits[i] = hitFromDomain(r)
	}
	return SearchResponse{
		Hits:     hits,
		Source:   SearchSource(resp.Source),
		Fallback: string(resp.Fallback),
		Tokens:   resp.Tokens,
	}
}

func hitFromDomain(r result.Result) SearchHit {
	h := SearchHit{Product: productFromDomain(r.Product())}
	if d, ok := r.Distance(); ok {
		h.Distance = &d
	}
	return h
}
