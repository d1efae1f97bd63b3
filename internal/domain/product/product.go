package product

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// Field limits.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
	MaxImageURLLength    = 2048
	// MaxPriceCents fits NUMERIC(10,2).
	MaxPriceCents = 99_999_999_99
)

// EmbeddingStatus tells whether a product takes part in vector search.
type EmbeddingStatus string

// Embedding status constants.
const (
	EmbeddingReady       EmbeddingStatus = "ready"
	EmbeddingUnavailable EmbeddingStatus = "unavailable"
)

// Product is the catalog aggregate. Immutable except for attaching an embedding.
type Product struct {
	id          string
	name        string
	description string
	imageURL    string
	priceCents  int64
	vector      []float32
	createdAt   time.Time
}

// New validates input and creates a Product with a fresh UUID.
// Price is rounded to two fractional digits.
func New(name, description string, price float64, imageURL string, now time.Time) (Product, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	imageURL = strings.TrimSpace(imageURL)

	if name == "" {
		return Product{}, fmt.Errorf("%w: name is required", domain.ErrInvalidProduct)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Product{}, fmt.Errorf("%w: name too long (max %d)", domain.ErrInvalidProduct, MaxNameLength)
	}
	if description == "" {
		return Product{}, fmt.Errorf("%w: description is required", domain.ErrInvalidProduct)
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return Product{}, fmt.Errorf(
			"%w: description too long (max %d)", domain.ErrInvalidProduct, MaxDescriptionLength,
		)
	}
	if len(imageURL) > MaxImageURLLength {
		return Product{}, fmt.Errorf("%w: imageUrl too long (max %d)", domain.ErrInvalidProduct, MaxImageURLLength)
	}
	cents, err := PriceToCents(price)
	if err != nil {
		return Product{}, err
	}

	return Product{
		id:          uuid.NewString(),
		name:        name,
		description: description,
		imageURL:    imageURL,
		priceCents:  cents,
		createdAt:   now.UTC().Truncate(time.Microsecond),
	}, nil
}

// PriceToCents converts a decimal price into integer cents.
func PriceToCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price must be a finite number", domain.ErrInvalidProduct)
	}
	if price < 0 {
		return 0, fmt.Errorf("%w: price must be non-negative", domain.ErrInvalidProduct)
	}
	cents := int64(math.Round(price * 100))
	if cents > MaxPriceCents {
		return 0, fmt.Errorf("%w: price too large", domain.ErrInvalidProduct)
	}
	return cents, nil
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(
	id, name, description, imageURL string, priceCents int64,
	vector []float32, createdAt time.Time,
) Product {
	return Product{
		id:          id,
		name:        name,
		description: description,
		imageURL:    imageURL,
		priceCents:  priceCents,
		vector:      vector,
		createdAt:   createdAt,
	}
}

// WithEmbedding returns a copy carrying the given vector.
func (p Product) WithEmbedding(vec []float32) Product {
	cp := make([]float32, len(vec))
	copy(cp, vec)
	p.vector = cp
	return p
}

// ID returns the product identifier.
func (p Product) ID() string { return p.id }

// Name returns the product name.
func (p Product) Name() string { return p.name }

// Description returns the product description.
func (p Product) Description() string { return p.description }

// ImageURL returns the optional image URL ("" when absent).
func (p Product) ImageURL() string { return p.imageURL }

// PriceCents returns the price in cents.
func (p Product) PriceCents() int64 { return p.priceCents }

// Price returns the price as a decimal with two fractional digits.
func (p Product) Price() float64 { return float64(p.priceCents) / 100 }

// Vector returns the embedding vector (nil when unavailable).
func (p Product) Vector() []float32 { return p.vector }

// CreatedAt returns the creation timestamp (UTC).
func (p Product) CreatedAt() time.Time { return p.createdAt }

// EmbeddingStatus reports whether the product has a stored vector.
func (p Product) EmbeddingStatus() EmbeddingStatus {
	if len(p.vector) == 0 {
		return EmbeddingUnavailable
	}
	return EmbeddingReady
}

// EmbeddingText is the text sent to the embedding provider.
func (p Product) EmbeddingText() string {
	return p.name + " " + p.description
}
