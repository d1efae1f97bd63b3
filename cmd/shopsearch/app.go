package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/config"
	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/db/memory"
	"github.com/kailas-cloud/shopsearch/internal/db/postgres"
	"github.com/kailas-cloud/shopsearch/internal/db/valkey"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	budgetrepo "github.com/kailas-cloud/shopsearch/internal/repository/budget"
	"github.com/kailas-cloud/shopsearch/internal/repository/embcache"
	productrepo "github.com/kailas-cloud/shopsearch/internal/repository/product"
	openaiEmb "github.com/kailas-cloud/shopsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
)

// app is the composition root shared by all subcommands.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	catalog db.CatalogStore
	pg      *postgres.Store // nil for the memory driver
	cache   *valkey.Store   // nil when cache.addrs is empty

	// Outermost link of the embedder chain; nil when no provider is configured.
	embedder *embeddinguc.InstrumentedEmbedder
	// health probe of the provider itself, bypassing cache and budget
	embeddingHealth domain.HealthChecker
	budget          *embeddinguc.BudgetTracker

	products *productuc.Service
	provider *embeddinguc.Provider
	repo     *productrepo.Repo
}

func loadConfig(cfgPath string) (string, config.Config, error) {
	env := config.GetEnv()
	var (
		cfg config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return "", config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return env, cfg, nil
}

// newApp loads configuration, connects stores and assembles the embedder chain.
func newApp(ctx context.Context, cfgPath string) (*app, error) {
	env, cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.connect(ctx); err != nil {
		a.close()
		return nil, err
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	a.buildEmbedder(ctx)

	a.repo = productrepo.New(a.catalog)
	a.provider = embeddinguc.NewProvider(a.domainEmbedder(), embeddinguc.ProviderConfig{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
	}, logger)
	a.products = productuc.New(a.repo, a.provider, logger).WithLimits(a.searchLimits())

	return a, nil
}

func (a *app) connect(ctx context.Context) error {
	cfg := a.cfg
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := postgres.NewStore(postgres.Config{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxOpenConns,
		})
		if err != nil {
			return fmt.Errorf("create postgres store: %w", err)
		}
		a.pg = pg
		a.catalog = pg
	case config.DriverMemory:
		a.catalog = memory.NewStore()
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if err := a.catalog.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	a.logger.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))

	if !cfg.Cache.Enabled() {
		return nil
	}
	cache, err := valkey.NewStore(valkey.Config{
		Addrs:      cfg.Cache.Addrs,
		Password:   cfg.Cache.Password,
		Standalone: cfg.Cache.Standalone,
	})
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}
	a.cache = cache
	if err := cache.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("cache not ready: %w", err)
	}
	a.logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented (budget + usage).
func (a *app) buildEmbedder(ctx context.Context) {
	ec := a.cfg.Embedding
	if !ec.Enabled() {
		a.logger.Warn("Embedding provider not configured, search is lexical only")
		return
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     a.logger,
	})
	a.embeddingHealth = base

	var embedder domain.Embedder = base
	if a.cache != nil {
		embedder = embcache.New(base, a.cache, embcache.Config{
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			TTL:        a.cfg.Cache.TTL(),
		}, metrics.EmbeddingCacheTotal, a.logger)
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker embeddinguc.BudgetChecker
	if ec.Budget.DailyTokenLimit > 0 || ec.Budget.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if ec.Budget.Action == string(embeddinguc.BudgetActionReject) {
			action = embeddinguc.BudgetActionReject
		}
		a.budget = embeddinguc.NewBudgetTracker(
			ec.Provider, ec.Budget.DailyTokenLimit, ec.Budget.MonthlyTokenLimit, action, a.logger,
		)
		if a.cache != nil {
			a.budget.WithStore(ctx, budgetrepo.New(a.cache))
		}
		budgetChecker = a.budget
	}

	a.embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, budgetChecker, a.logger)

	a.logger.Info("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimensions", ec.Dimensions),
		zap.Bool("cache", a.cache != nil),
		zap.Bool("budget", a.budget != nil),
	)
}

// domainEmbedder returns the chain as an interface, nil (untyped) when disabled.
func (a *app) domainEmbedder() domain.Embedder {
	if a.embedder == nil {
		return nil
	}
	return a.embedder
}

func (a *app) searchLimits() domain.SearchLimits {
	return domain.SearchLimits{Default: a.cfg.Search.DefaultLimit, Max: a.cfg.Search.MaxLimit}
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.catalog != nil {
		a.catalog.Close()
	}
	_ = a.logger.Sync()
}
