package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/shopsearch/internal/domain/usage"
)

// Service reports embedding token budget usage.
type Service struct {
	br     BudgetReader
	action string
	now    func() time.Time
}

// New creates a Service. br can be nil (no budget configured): reports are unlimited.
func New(br BudgetReader, action string) *Service {
	if br == nil {
		action = ""
	}
	return &Service{br: br, action: action, now: time.Now}
}

// GetReport builds a usage report for the period containing now.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	start, end := period.Bounds(s.now())

	if s.br == nil {
		return domusage.NewReport(period, start, end, 0, 0, -1, "")
	}

	var used, limit, remaining int64
	switch period {
	case domusage.PeriodMonth:
		used, limit, remaining = s.br.MonthlyUsed(), s.br.MonthlyLimit(), s.br.RemainingMonthly()
	default:
		used, limit, remaining = s.br.DailyUsed(), s.br.DailyLimit(), s.br.RemainingDaily()
	}

	return domusage.NewReport(period, start, end, used, limit, remaining, s.action)
}
