package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
)

func reembedCMD(cfgPath *string) *cobra.Command {
	var opts productuc.ReembedOptions

	reembed := &cobra.Command{
		Use:   "reembed",
		Short: "Backfill embeddings for products stored without one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			if a.embedder == nil {
				return errors.New("reembed requires an embedding provider (embedding.api_key)")
			}
			opts.Dimensions = a.cfg.Embedding.Dimensions
			opts.ChunkTimeout = time.Duration(a.cfg.Embedding.TimeoutSec) * time.Second

			report, err := a.products.Reembed(ctx, a.embedder, opts)
			a.logger.Info("Reembed finished",
				zap.Int("embedded", report.Embedded),
				zap.Int("failed", report.Failed),
				zap.Int("tokens", report.Tokens),
				zap.Bool("quota_exceeded", report.QuotaExceeded),
			)
			if err != nil {
				return fmt.Errorf("reembed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "embedded=%d failed=%d tokens=%d quota_exceeded=%t\n",
				report.Embedded, report.Failed, report.Tokens, report.QuotaExceeded)
			return nil
		},
	}
	reembed.Flags().IntVar(&opts.BatchSize, "batch", 100, "products per page")
	reembed.Flags().IntVar(&opts.Workers, "workers", 4, "concurrent embedding calls")
	reembed.Flags().IntVar(&opts.MaxProducts, "max", 0, "stop after this many products (0 = all)")

	return reembed
}
