package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/vector"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// OutcomeKind is the tri-state result of an embedding attempt.
type OutcomeKind int

const (
	// OutcomeSuccess carries a vector of the configured dimension.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeQuotaExceeded means the provider or the local budget refused the call.
	OutcomeQuotaExceeded
	// OutcomeFailed covers every other error.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	default:
		return "failed"
	}
}

// Outcome is what callers branch on. Vector is set only for OutcomeSuccess.
type Outcome struct {
	Kind   OutcomeKind
	Vector []float32
	Tokens int
	Err    error
}

// Classify maps an embedder error to an outcome kind.
func Classify(err error) OutcomeKind {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return OutcomeQuotaExceeded
	default:
		return OutcomeFailed
	}
}

// ProviderConfig bounds a single embedding call.
type ProviderConfig struct {
	Provider   string
	Model      string
	Dimensions int
	Timeout    time.Duration // 0 disables the per-call deadline
}

// Provider turns the embedder chain into an Outcome. No retries.
type Provider struct {
	embedder domain.Embedder
	cfg      ProviderConfig
	logger   *zap.Logger
}

// NewProvider creates a provider. A nil embedder yields Failed outcomes wrapping ErrEmbeddingDisabled.
func NewProvider(e domain.Embedder, cfg ProviderConfig, logger *zap.Logger) *Provider {
	return &Provider{embedder: e, cfg: cfg, logger: logger}
}

// Enabled reports whether an embedder is configured.
func (p *Provider) Enabled() bool {
	return p.embedder != nil
}

// Dimensions returns the configured vector dimension.
func (p *Provider) Dimensions() int {
	return p.cfg.Dimensions
}

// Embed vectorizes text and classifies the result.
func (p *Provider) Embed(ctx context.Context, text string) Outcome {
	if p.embedder == nil {
		return Outcome{Kind: OutcomeFailed, Err: domain.ErrEmbeddingDisabled}
	}

	callCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	res, err := p.embedder.Embed(callCtx, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			p.countError("timeout")
			err = fmt.Errorf("embedding timed out after %s: %w", p.cfg.Timeout, err)
		}
		return Outcome{Kind: Classify(err), Err: err}
	}

	if err := vector.CheckDimensions(res.Embedding, p.cfg.Dimensions); err != nil {
		p.countError("dimension")
		return Outcome{Kind: OutcomeFailed, Tokens: res.TotalTokens, Err: fmt.Errorf("provider %s: %w", p.cfg.Provider, err)}
	}

	return Outcome{Kind: OutcomeSuccess, Vector: res.Embedding, Tokens: res.TotalTokens}
}

func (p *Provider) countError(kind string) {
	metrics.EmbeddingErrorsTotal.WithLabelValues(p.cfg.Provider, p.cfg.Model, kind).Inc()
}
