package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

type slowEmbedder struct{}

func (slowEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	<-ctx.Done()
	return domain.EmbeddingResult{}, ctx.Err()
}

func testProviderConfig() ProviderConfig {
	return ProviderConfig{Provider: "test", Model: "model", Dimensions: 3}
}

func TestProvider_Success(t *testing.T) {
	inner := &plainMockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0, 0}, TotalTokens: 4}}
	p := NewProvider(inner, testProviderConfig(), zap.NewNop())

	out := p.Embed(context.Background(), "desk lamp")
	if out.Kind != OutcomeSuccess {
		t.Fatalf("kind = %s, err = %v", out.Kind, out.Err)
	}
	if len(out.Vector) != 3 || out.Tokens != 4 {
		t.Errorf("unexpected outcome %+v", out)
	}
}

func TestProvider_QuotaExceeded(t *testing.T) {
	inner := &plainMockEmbedder{err: fmt.Errorf("openai: %w", domain.ErrEmbeddingQuotaExceeded)}
	p := NewProvider(inner, testProviderConfig(), zap.NewNop())

	out := p.Embed(context.Background(), "desk lamp")
	if out.Kind != OutcomeQuotaExceeded {
		t.Fatalf("kind = %s, want quota_exceeded", out.Kind)
	}
	if out.Vector != nil {
		t.Error("quota outcome must not carry a vector")
	}
}

func TestProvider_BudgetRejectIsQuota(t *testing.T) {
	budget := NewBudgetTracker("test", 10, 0, BudgetActionReject, zap.NewNop())
	budget.Record(10)
	inner := &plainMockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}}
	chain := NewInstrumentedEmbedder(inner, "test", "model", budget, zap.NewNop())
	p := NewProvider(chain, testProviderConfig(), zap.NewNop())

	out := p.Embed(context.Background(), "desk lamp")
	if out.Kind != OutcomeQuotaExceeded {
		t.Fatalf("kind = %s, want quota_exceeded", out.Kind)
	}
	if inner.calls != 0 {
		t.Errorf("provider must not be called after budget rejection, got %d calls", inner.calls)
	}
}

func TestProvider_OtherErrorFails(t *testing.T) {
	inner := &plainMockEmbedder{err: fmt.Errorf("openai: %w", domain.ErrEmbeddingProviderError)}
	p := NewProvider(inner, testProviderConfig(), zap.NewNop())

	out := p.Embed(context.Background(), "desk lamp")
	if out.Kind != OutcomeFailed {
		t.Fatalf("kind = %s, want failed", out.Kind)
	}
	if !errors.Is(out.Err, domain.ErrEmbeddingProviderError) {
		t.Errorf("err = %v", out.Err)
	}
}

func TestProvider_WrongDimensionFails(t *testing.T) {
	inner := &plainMockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0}}}
	p := NewProvider(inner, testProviderConfig(), zap.NewNop())

	out := p.Embed(context.Background(), "desk lamp")
	if out.Kind != OutcomeFailed {
		t.Fatalf("kind = %s, want failed", out.Kind)
	}
	if !errors.Is(out.Err, domain.ErrVectorDimMismatch) {
		t.Errorf("err = %v, want ErrVectorDimMismatch", out.Err)
	}
	if out.Vector != nil {
		t.Error("failed outcome must not carry a vector")
	}
}

func TestProvider_Disabled(t *testing.T) {
	p := NewProvider(nil, testProviderConfig(), zap.NewNop())

	if p.Enabled() {
		t.Fatal("expected disabled provider")
	}
	out := p.Embed(context.Background(), "desk lamp")
	if out.Kind != OutcomeFailed || !errors.Is(out.Err, domain.ErrEmbeddingDisabled) {
		t.Errorf("outcome = %+v", out)
	}
}

func TestProvider_Timeout(t *testing.T) {
	cfg := testProviderConfig()
	cfg.Timeout = 20 * time.Millisecond
	p := NewProvider(slowEmbedder{}, cfg, zap.NewNop())

	out := p.Embed(context.Background(), "desk lamp")
	if out.Kind != OutcomeFailed {
		t.Fatalf("kind = %s, want failed", out.Kind)
	}
	if !errors.Is(out.Err, context.DeadlineExceeded) {
		t.Errorf("err = %v", out.Err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want OutcomeKind
	}{
		{nil, OutcomeSuccess},
		{domain.ErrEmbeddingQuotaExceeded, OutcomeQuotaExceeded},
		{fmt.Errorf("budget check: %w", domain.ErrEmbeddingQuotaExceeded), OutcomeQuotaExceeded},
		{errors.New("connection reset"), OutcomeFailed},
		{domain.ErrEmbeddingDisabled, OutcomeFailed},
	}
	for _, tc := range tests {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
