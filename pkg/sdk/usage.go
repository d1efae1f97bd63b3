package shopsearch

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/shopsearch/internal/domain/usage"
)

// UsagePeriod is the budget window of a usage report.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains embedding token usage for a budget window.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	ResetsAt    time.Time
	TokensUsed  int64
	// TokensLimit is 0 and TokensRemaining -1 when no budget is set (WithTokenBudget).
	TokensLimit     int64
	TokensRemaining int64
	IsExhausted     bool
}

// Usage returns the token budget report for the given period.
// Observer always records success: the underlying use case is in-memory
// and does not produce errors.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	p := domusage.PeriodDay
	if period == PeriodMonth {
		p = domusage.PeriodMonth
	}
	r := c.usageSvc.GetReport(ctx, p)

	return UsageReport{
		Period:          UsagePeriod(r.Period()),
		PeriodStart:     r.PeriodStart(),
		ResetsAt:        r.ResetsAt(),
		TokensUsed:      r.TokensUsed(),
		TokensLimit:     r.TokensLimit(),
		TokensRemaining: r.TokensRemaining(),
		IsExhausted:     r.Exhausted(),
	}
}
