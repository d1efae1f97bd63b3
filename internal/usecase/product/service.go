package product

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
)

// CreateInput is a product as submitted by a client. Price is in currency units.
type CreateInput struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
}

// Service handles product creation, lookup and the embedding backfill.
type Service struct {
	repo     Repository
	embedder Embedder
	limits   domain.SearchLimits
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a product service.
func New(repo Repository, embedder Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		embedder: embedder,
		limits:   domain.DefaultSearchLimits(),
		now:      time.Now,
		logger:   logger,
	}
}

// WithLimits configures list page sizes.
func (s *Service) WithLimits(l domain.SearchLimits) *Service {
	s.limits = l.Normalized()
	return s
}

// Create validates and stores a product. An embedding failure never fails the request:
// the product is stored without a vector (embedding status "unavailable").
func (s *Service) Create(ctx context.Context, in CreateInput) (domproduct.Product, error) {
	p, err := domproduct.New(in.Name, in.Description, in.Price, in.ImageURL, s.now())
	if err != nil {
		return domproduct.Product{}, err
	}

	out := s.embedder.Embed(ctx, p.EmbeddingText())
	switch out.Kind {
	case embedding.OutcomeSuccess:
		p = p.WithEmbedding(out.Vector)
	case embedding.OutcomeQuotaExceeded:
		s.log(ctx).Info("Embedding quota exceeded, storing product without vector",
			zap.String("product_id", p.ID()), zap.Error(out.Err))
	default:
		s.log(ctx).Warn("Embedding failed, storing product without vector",
			zap.String("product_id", p.ID()), zap.Error(out.Err))
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return domproduct.Product{}, fmt.Errorf("create product: %w", err)
	}

	metrics.ProductsCreatedTotal.WithLabelValues(string(p.EmbeddingStatus())).Inc()
	return p, nil
}

// Get returns a product by ID, ErrProductNotFound if missing.
func (s *Service) Get(ctx context.Context, id string) (domproduct.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domproduct.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List returns the newest products.
func (s *Service) List(ctx context.Context, limit int) ([]domproduct.Product, error) {
	ps, err := s.repo.ListRecent(ctx, s.limits.Clamp(limit))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return ps, nil
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
