package shopsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/db/memory"
	"github.com/kailas-cloud/shopsearch/internal/db/postgres"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	domusage "github.com/kailas-cloud/shopsearch/internal/domain/usage"
	"github.com/kailas-cloud/shopsearch/internal/domain/vector"
	productrepo "github.com/kailas-cloud/shopsearch/internal/repository/product"
	embeddinguc "github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
	usageuc "github.com/kailas-cloud/shopsearch/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultEmbeddingTimeout = 5 * time.Second
	sdkProvider             = "sdk"
)

// Внутренние интерфейсы для подмены в тестах.
type productUseCase interface {
	Create(ctx context.Context, in productuc.CreateInput) (domproduct.Product, error)
	Get(ctx context.Context, id string) (domproduct.Product, error)
	List(ctx context.Context, limit int) ([]domproduct.Product, error)
	Reembed(ctx context.Context, be productuc.BatchEmbedder, opts productuc.ReembedOptions) (productuc.ReembedReport, error)
}

type searchUseCase interface {
	Search(ctx context.Context, raw string, limit int) (searchuc.Response, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// Client is the shopsearch SDK entry point.
type Client struct {
	store      db.CatalogStore
	productSvc productUseCase
	searchSvc  searchUseCase
	healthSvc  healthUseCase
	usageSvc   usageUseCase
	// nil when no embedder is configured
	batchEmbedder    productuc.BatchEmbedder
	dimensions       int
	embeddingTimeout time.Duration
	obs              *observer
}

// New creates a Client and connects to the catalog store.
// The provided context is used for the readiness check and migrations.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	defaults := domain.DefaultVectorConfig()
	cfg := &clientConfig{
		vectorDimensions:  defaults.Dimensions,
		distanceThreshold: defaults.DistanceThreshold,
		embeddingTimeout:  defaultEmbeddingTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

// validate rejects settings that would silently disable vector search.
func (c *clientConfig) validate() error {
	if c.vectorDimensions <= 0 {
		return fmt.Errorf("shopsearch: vector dimensions must be positive, got %d", c.vectorDimensions)
	}
	if c.distanceThreshold <= 0 || c.distanceThreshold > vector.MaxCosineDistance {
		return fmt.Errorf("shopsearch: distance threshold must be in (0, %g], got %g",
			vector.MaxCosineDistance, c.distanceThreshold)
	}
	if c.embeddingTimeout < 0 {
		return fmt.Errorf("shopsearch: embedding timeout must not be negative, got %s", c.embeddingTimeout)
	}
	return nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.CatalogStore, error) {
	switch cfg.driver {
	case driverMemory:
		return memory.NewStore(), nil
	case driverPostgres:
		s, err := postgres.NewStore(postgres.Config{DSN: cfg.dsn})
		if err != nil {
			return nil, fmt.Errorf("shopsearch: create postgres store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("shopsearch: database not ready: %w", err)
		}
		if cfg.migrate {
			if err := s.Migrate(postgres.DirectionUp, 0); err != nil {
				s.Close()
				return nil, fmt.Errorf("shopsearch: %w", err)
			}
		}
		return s, nil
	case "":
		return nil, errors.New("shopsearch: catalog store required (use WithPostgres or WithMemory)")
	default:
		return nil, fmt.Errorf("shopsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.CatalogStore, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()
	repo := productrepo.New(store)

	var budget *embeddinguc.BudgetTracker
	if cfg.dailyTokens > 0 || cfg.monthlyTokens > 0 {
		action := embeddinguc.BudgetActionWarn
		if cfg.rejectOverUse {
			action = embeddinguc.BudgetActionReject
		}
		budget = embeddinguc.NewBudgetTracker(sdkProvider, cfg.dailyTokens, cfg.monthlyTokens, action, logger)
	}

	// Nil interfaces, not typed nil pointers, for absent components.
	var (
		chain         domain.Embedder
		batchEmbedder productuc.BatchEmbedder
		budgetChecker embeddinguc.BudgetChecker
		budgetReader  usageuc.BudgetReader
		action        string
	)
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
		action = string(budget.Action())
	}
	if cfg.embedder != nil {
		instrumented := embeddinguc.NewInstrumentedEmbedder(
			adaptEmbedder(cfg.embedder), sdkProvider, "", budgetChecker, logger,
		)
		chain = instrumented
		batchEmbedder = instrumented
	}

	provider := embeddinguc.NewProvider(chain, embeddinguc.ProviderConfig{
		Provider:   sdkProvider,
		Dimensions: cfg.vectorDimensions,
		Timeout:    cfg.embeddingTimeout,
	}, logger)

	limits := domain.SearchLimits{Default: cfg.defaultLimit, Max: cfg.maxLimit}.Normalized()

	return &Client{
		store:      store,
		productSvc: productuc.New(repo, provider, logger).WithLimits(limits),
		searchSvc: searchuc.New(repo, provider, searchuc.Config{
			Limits:            limits,
			DistanceThreshold: cfg.distanceThreshold,
			Dimensions:        cfg.vectorDimensions,
		}, logger),
		healthSvc:     healthuc.New(store, nil, nil, logger),
		usageSvc:      usageuc.New(budgetReader, action),
		batchEmbedder:    batchEmbedder,
		dimensions:       cfg.vectorDimensions,
		embeddingTimeout: cfg.embeddingTimeout,
		obs:              obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Products returns the product catalog service.
func (c *Client) Products() *ProductService {
	return &ProductService{svc: c.productSvc, obs: c.obs}
}

// Reembed embeds products stored without a vector, oldest first.
// Quota exhaustion ends the run without an error; check ReembedReport.QuotaExceeded.
func (c *Client) Reembed(ctx context.Context, opts ReembedOptions) (report ReembedReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reembed", start, err) }()

	if c.batchEmbedder == nil {
		return ReembedReport{}, fmt.Errorf("reembed: %w", ErrEmbeddingDisabled)
	}

	r, err := c.productSvc.Reembed(ctx, c.batchEmbedder, productuc.ReembedOptions{
		BatchSize:    opts.BatchSize,
		Workers:      opts.Workers,
		MaxProducts:  opts.MaxProducts,
		Dimensions:   c.dimensions,
		ChunkTimeout: c.embeddingTimeout,
	})
	report = ReembedReport{
		Embedded:      r.Embedded,
		Failed:        r.Failed,
		Tokens:        r.Tokens,
		QuotaExceeded: r.QuotaExceeded,
	}
	if err != nil {
		return report, fmt.Errorf("reembed: %w", err)
	}
	return report, nil
}
