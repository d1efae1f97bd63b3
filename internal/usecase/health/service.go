package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Search still answers via lexical fallback
	// when only the embedding provider or cache is down.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentCache     = "cache"
	ComponentEmbedding = "embedding"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        Pinger
	cache     Pinger
	embedding EmbeddingChecker
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Service. cache and embedding can be nil.
func New(db, cache Pinger, embedding EmbeddingChecker, logger *zap.Logger) *Service {
	return &Service{db: db, cache: cache, embedding: embedding, timeout: defaultCheckTimeout, logger: logger}
}

// Check runs all configured checks in parallel, each bounded by its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	type probe struct {
		name string
		fn   func(context.Context) error
	}
	probes := []probe{{ComponentDatabase, s.db.Ping}}
	if s.cache != nil {
		probes = append(probes, probe{ComponentCache, s.cache.Ping})
	}
	if s.embedding != nil {
		probes = append(probes, probe{ComponentEmbedding, s.embedding.HealthCheck})
	}

	var mu sync.Mutex
	checks := make(map[string]CheckResult, len(probes))

	var g errgroup.Group
	for _, p := range probes {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := p.fn(cctx); err != nil {
				s.logger.Warn("Health check failed", zap.String("component", p.name), zap.Error(err))
				res = CheckError
			}

			mu.Lock()
			checks[p.name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
