package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db/postgres"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/shopsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
	usageuc "github.com/kailas-cloud/shopsearch/internal/usecase/usage"
	"github.com/kailas-cloud/shopsearch/internal/version"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var port int

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			if port > 0 {
				a.cfg.HTTP.Port = port
			}
			return a.serve(ctx)
		},
	}
	serve.Flags().IntVar(&port, "port", 0, "listen port (overrides http.port)")

	return serve
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	logger.Info("Starting shopsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if a.pg != nil && cfg.Database.MigrateOnStart {
		if err := a.pg.Migrate(postgres.DirectionUp, 0); err != nil {
			return fmt.Errorf("migrate on start: %w", err)
		}
		logger.Info("Schema migrations applied")
	}

	searchSvc := searchuc.New(a.repo, a.provider, searchuc.Config{
		Limits:            a.searchLimits(),
		DistanceThreshold: cfg.Search.DistanceThreshold,
		Dimensions:        cfg.Embedding.Dimensions,
	}, logger)

	// Nil interfaces, not typed nil pointers, for absent components.
	var cachePinger healthuc.Pinger
	if a.cache != nil {
		cachePinger = a.cache
	}
	var embeddingChecker healthuc.EmbeddingChecker
	if a.embeddingHealth != nil {
		embeddingChecker = a.embeddingHealth
	}
	healthSvc := healthuc.New(a.catalog, cachePinger, embeddingChecker, logger)

	var budgetReader usageuc.BudgetReader
	var budgetAction string
	if a.budget != nil {
		budgetReader = a.budget
		budgetAction = string(a.budget.Action())
	}
	usageSvc := usageuc.New(budgetReader, budgetAction)

	server := chiTransport.NewServer(a.products, searchSvc, healthSvc, usageSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r, chiTransport.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
