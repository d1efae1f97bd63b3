package db

import (
	"context"
	"time"
)

// CatalogStore is the product catalog facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade -- consumers use narrow sub-interfaces (ISP)
type CatalogStore interface {
	Pinger
	ProductReader
	ProductWriter
	LexicalFilterer
	VectorNearester
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// CacheStore is the key-value facade used for the embedding cache and budget counters.
type CacheStore interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProductRow is the storage representation of a product.
// Embedding is nil for products whose embedding is unavailable.
type ProductRow struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	PriceCents  int64
	Embedding   []float32
	CreatedAt   time.Time
}

// ProductReader provides product lookups.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*ProductRow, error)
	// ListRecent returns products ordered by created_at desc, id desc.
	ListRecent(ctx context.Context, limit int) ([]ProductRow, error)
	// ListMissingEmbedding returns products without a vector, oldest first.
	ListMissingEmbedding(ctx context.Context, limit int) ([]ProductRow, error)
}

// ProductWriter provides product mutations.
type ProductWriter interface {
	InsertProduct(ctx context.Context, row *ProductRow) error
	SetEmbedding(ctx context.Context, id string, embedding []float32) error
}

// LexicalQuery selects products where every term is a case-insensitive substring
// of name or description. Terms are literals (no wildcards).
type LexicalQuery struct {
	Terms []string
	Limit int
}

// LexicalFilterer runs lexical filters ordered by created_at desc, id desc.
type LexicalFilterer interface {
	LexicalFilter(ctx context.Context, q *LexicalQuery) ([]ProductRow, error)
}

// VectorQuery selects products with cosine distance to Vector strictly below Threshold.
type VectorQuery struct {
	Vector    []float32
	Threshold float64
	Limit     int
}

// VectorHit is a single nearest-neighbour match.
type VectorHit struct {
	Row      ProductRow
	Distance float64
}

// VectorNearester runs cosine nearest-neighbour queries ordered by distance asc.
type VectorNearester interface {
	VectorNearest(ctx context.Context, q *VectorQuery) ([]VectorHit, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
