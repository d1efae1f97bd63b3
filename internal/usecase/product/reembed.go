package product

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domproduct "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/vector"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
)

// ReembedOptions bounds one backfill run.
type ReembedOptions struct {
	BatchSize   int // products fetched per page
	Workers     int // concurrent embedding calls per page
	Dimensions  int
	MaxProducts int // 0 = until nothing is left
	// ChunkTimeout bounds one batch embedding call; 0 disables it.
	// A timed-out chunk counts as failed, the run goes on.
	ChunkTimeout time.Duration
}

// ReembedReport summarizes a backfill run.
type ReembedReport struct {
	Embedded      int
	Failed        int
	Tokens        int
	QuotaExceeded bool
}

// Reembed attaches vectors to products stored without one, oldest first.
// Quota exhaustion stops the run cleanly (nil error, QuotaExceeded set);
// other embedding failures skip the affected products for the rest of the run.
func (s *Service) Reembed(ctx context.Context, be BatchEmbedder, opts ReembedOptions) (ReembedReport, error) {
	opts = normalizeReembedOptions(opts)
	log := s.log(ctx)

	var report ReembedReport
	skipped := make(map[string]struct{})

	for opts.MaxProducts == 0 || report.Embedded+report.Failed < opts.MaxProducts {
		page, err := s.repo.ListMissingEmbedding(ctx, opts.BatchSize+len(skipped))
		if err != nil {
			return report, fmt.Errorf("list missing embeddings: %w", err)
		}

		todo := make([]domproduct.Product, 0, len(page))
		for _, p := range page {
			if _, ok := skipped[p.ID()]; !ok {
				todo = append(todo, p)
			}
		}
		if len(todo) == 0 {
			break
		}
		if len(todo) > opts.BatchSize {
			todo = todo[:opts.BatchSize]
		}
		if opts.MaxProducts > 0 {
			todo = todo[:min(len(todo), opts.MaxProducts-report.Embedded-report.Failed)]
		}

		pr, err := s.reembedPage(ctx, be, todo, opts)
		report.Embedded += pr.embedded
		report.Tokens += pr.tokens
		report.Failed += len(pr.failed)
		for _, id := range pr.failed {
			skipped[id] = struct{}{}
		}

		if errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
			report.QuotaExceeded = true
			log.Warn("Embedding quota exhausted, stopping backfill", zap.Error(err))
			break
		}
		if err != nil {
			return report, err
		}

		log.Info("Backfill page done",
			zap.Int("page_size", len(todo)),
			zap.Int("embedded_total", report.Embedded),
			zap.Int("failed_total", report.Failed),
		)
	}

	return report, nil
}

type pageResult struct {
	embedded int
	tokens   int
	failed   []string
}

// reembedPage splits the page into one chunk per worker and embeds chunks concurrently.
func (s *Service) reembedPage(
	ctx context.Context, be BatchEmbedder, page []domproduct.Product, opts ReembedOptions,
) (pageResult, error) {
	var (
		mu  sync.Mutex
		res pageResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	chunkSize := (len(page) + opts.Workers - 1) / opts.Workers
	for start := 0; start < len(page); start += chunkSize {
		chunk := page[start:min(start+chunkSize, len(page))]
		g.Go(func() error {
			embedded, tokens, failed, err := s.embedChunk(gctx, be, chunk, opts)

			mu.Lock()
			res.embedded += embedded
			res.tokens += tokens
			res.failed = append(res.failed, failed...)
			mu.Unlock()

			return err
		})
	}

	err := g.Wait()
	return res, err
}

// embedChunk returns an error only for quota exhaustion and store failures.
func (s *Service) embedChunk(
	ctx context.Context, be BatchEmbedder, chunk []domproduct.Product, opts ReembedOptions,
) (embedded, tokens int, failed []string, err error) {
	texts := make([]string, len(chunk))
	for i, p := range chunk {
		texts[i] = p.EmbeddingText()
	}

	out, err := batchEmbedWithTimeout(ctx, be, texts, opts.ChunkTimeout)
	if err != nil {
		if embedding.Classify(err) == embedding.OutcomeQuotaExceeded {
			return 0, 0, nil, err
		}
		if ctx.Err() != nil {
			return 0, 0, nil, ctx.Err()
		}
		s.log(ctx).Warn("Backfill chunk failed", zap.Int("chunk_size", len(chunk)), zap.Error(err))
		metrics.ReembedTotal.WithLabelValues("failed").Add(float64(len(chunk)))
		return 0, 0, ids(chunk), nil
	}
	if len(out.Embeddings) != len(chunk) {
		metrics.ReembedTotal.WithLabelValues("failed").Add(float64(len(chunk)))
		return 0, out.TotalTokens, ids(chunk), nil
	}

	for i, p := range chunk {
		if err := vector.CheckDimensions(out.Embeddings[i], opts.Dimensions); err != nil {
			s.log(ctx).Warn("Backfill vector rejected", zap.String("product_id", p.ID()), zap.Error(err))
			metrics.ReembedTotal.WithLabelValues("failed").Inc()
			failed = append(failed, p.ID())
			continue
		}
		if err := s.repo.SetEmbedding(ctx, p.ID(), out.Embeddings[i]); err != nil {
			return embedded, out.TotalTokens, failed, fmt.Errorf("set embedding %s: %w", p.ID(), err)
		}
		metrics.ReembedTotal.WithLabelValues("embedded").Inc()
		embedded++
	}
	return embedded, out.TotalTokens, failed, nil
}

func batchEmbedWithTimeout(
	ctx context.Context, be BatchEmbedder, texts []string, timeout time.Duration,
) (domain.BatchEmbeddingResult, error) {
	if timeout <= 0 {
		return be.BatchEmbed(ctx, texts)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return be.BatchEmbed(callCtx, texts)
}

func normalizeReembedOptions(o ReembedOptions) ReembedOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Dimensions <= 0 {
		o.Dimensions = domain.DefaultVectorConfig().Dimensions
	}
	if o.MaxProducts < 0 {
		o.MaxProducts = 0
	}
	return o
}

func ids(ps []domproduct.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}
	return out
}
