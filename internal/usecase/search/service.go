package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/source"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
)

// Config tunes the orchestrator.
type Config struct {
	Limits            domain.SearchLimits
	DistanceThreshold float64
	Dimensions        int
}

// Response is the outcome of one search: exactly one source, never a mix.
type Response struct {
	Results  []result.Result
	Source   source.Source
	Fallback source.Fallback
	// Tokens spent on the query embedding, 0 on a cache hit.
	Tokens int
}

// Service resolves a free-text query to products: recent, vector, or lexical.
type Service struct {
	recent   RecentLister
	lexical  *LexicalSearcher
	vector   *VectorSearcher
	embedder Embedder
	cfg      Config
	logger   *zap.Logger
}

// New creates the search orchestrator.
func New(repo Repository, embedder Embedder, cfg Config, logger *zap.Logger) *Service {
	cfg.Limits = cfg.Limits.Normalized()
	if cfg.DistanceThreshold <= 0 {
		cfg.DistanceThreshold = domain.DefaultVectorConfig().DistanceThreshold
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.DefaultVectorConfig().Dimensions
	}
	return &Service{
		recent:   repo,
		lexical:  NewLexicalSearcher(repo),
		vector:   NewVectorSearcher(repo, cfg.Dimensions),
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search runs the resolution pipeline for raw query text.
// Only recent-list and lexical store failures surface, as ErrSearchFailed.
func (s *Service) Search(ctx context.Context, raw string, limit int) (Response, error) {
	start := time.Now()
	q := query.Parse(raw)
	limit = s.cfg.Limits.Clamp(limit)

	resp, err := s.resolve(ctx, q, limit)
	if err != nil {
		return Response{}, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(resp.Source)).Inc()
	metrics.SearchResults.WithLabelValues(string(resp.Source)).Observe(float64(len(resp.Results)))
	metrics.SearchDuration.WithLabelValues(string(resp.Source)).Observe(time.Since(start).Seconds())
	if resp.Fallback != source.None {
		metrics.SearchFallbacksTotal.WithLabelValues(string(resp.Fallback)).Inc()
	}
	return resp, nil
}

func (s *Service) resolve(ctx context.Context, q query.Query, limit int) (Response, error) {
	if q.IsEmpty() {
		products, err := s.recent.ListRecent(ctx, limit)
		if err != nil {
			return Response{}, fmt.Errorf("list recent: %w: %w", domain.ErrSearchFailed, err)
		}
		return Response{Results: result.FromProducts(products), Source: source.Recent, Fallback: source.None}, nil
	}

	log := s.log(ctx)
	out := s.embedder.Embed(ctx, q.Text())

	switch out.Kind {
	case embedding.OutcomeQuotaExceeded:
		log.Info("Embedding quota exceeded, using lexical search", zap.Error(out.Err))
		return s.lexicalFallback(ctx, q, limit, source.QuotaExceeded, out)
	case embedding.OutcomeFailed:
		if errors.Is(out.Err, domain.ErrEmbeddingDisabled) {
			log.Debug("Embedding disabled, using lexical search")
		} else {
			log.Error("Embedding failed, using lexical search", zap.Error(out.Err))
		}
		return s.lexicalFallback(ctx, q, limit, source.EmbeddingFailed, out)
	}

	hits, err := s.vector.Search(ctx, out.Vector, limit, s.cfg.DistanceThreshold)
	if err != nil {
		log.Error("Vector search failed, using lexical search", zap.Error(err))
		return s.lexicalFallback(ctx, q, limit, source.VectorError, out)
	}
	if len(hits) == 0 {
		return s.lexicalFallback(ctx, q, limit, source.NoVectorMatches, out)
	}

	return Response{
		Results:  hits,
		Source:   source.Vector,
		Fallback: source.None,
		Tokens:   out.Tokens,
	}, nil
}

// lexicalFallback is terminal: its error is the request's error.
func (s *Service) lexicalFallback(
	ctx context.Context, q query.Query, limit int, reason source.Fallback, out embedding.Outcome,
) (Response, error) {
	products, err := s.lexical.Search(ctx, q, limit)
	if err != nil {
		return Response{}, fmt.Errorf("lexical search: %w: %w", domain.ErrSearchFailed, err)
	}
	return Response{
		Results:  result.FromProducts(products),
		Source:   source.Lexical,
		Fallback: reason,
		Tokens:   out.Tokens,
	}, nil
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
