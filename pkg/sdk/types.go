package shopsearch

import "time"

// EmbeddingStatus tells whether a product takes part in vector search.
type EmbeddingStatus string

// Embedding status constants.
const (
	EmbeddingReady       EmbeddingStatus = "ready"
	EmbeddingUnavailable EmbeddingStatus = "unavailable"
)

// SearchSource names the component that answered a search.
type SearchSource string

// Search source constants.
const (
	SourceRecent  SearchSource = "recent"
	SourceVector  SearchSource = "vector"
	SourceLexical SearchSource = "lexical"
)

// Product is a catalog item.
type Product struct {
	ID              string
	Name            string
	Description     string
	ImageURL        string
	Price           float64
	CreatedAt       time.Time
	EmbeddingStatus EmbeddingStatus
}

// NewProduct is the input of ProductService.Create.
type NewProduct struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
}

// SearchHit is one search result. Distance is set only for vector hits.
type SearchHit struct {
	Product  Product
	Distance *float64
}

// SearchResponse carries the hits and how they were produced.
type SearchResponse struct {
	Hits   []SearchHit
	Source SearchSource
	// Fallback explains a non-vector answer: "none", "quota_exceeded",
	// "embedding_failed", "no_vector_matches" or "vector_error".
	Fallback string
	// Tokens spent embedding the query, 0 on a cache hit or when not embedded.
	Tokens int
}

// ReembedOptions bounds one embedding backfill run. Zero values take defaults.
type ReembedOptions struct {
	BatchSize   int
	Workers     int
	MaxProducts int
}

// ReembedReport summarizes a backfill run.
type ReembedReport struct {
	Embedded      int
	Failed        int
	Tokens        int
	QuotaExceeded bool
}
