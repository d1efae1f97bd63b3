package usage

import (
	"fmt"
	"time"
)

// Period is the budget window a report covers.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value to a Period. Empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("period must be %q or %q, got %q", PeriodDay, PeriodMonth, s)
}

// Bounds returns the UTC window of the period that contains now.
func (p Period) Bounds(now time.Time) (start, end time.Time) {
	now = now.UTC()
	if p == PeriodMonth {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Report is the embedding token budget for one period.
// A zero limit means unlimited: Remaining is -1 and the budget never runs out.
type Report struct {
	period    Period
	start     time.Time
	end       time.Time
	used      int64
	limit     int64
	remaining int64
	action    string
}

// NewReport creates a budget report.
func NewReport(period Period, start, end time.Time, used, limit, remaining int64, action string) Report {
	return Report{
		period:    period,
		start:     start,
		end:       end,
		used:      used,
		limit:     limit,
		remaining: remaining,
		action:    action,
	}
}

// Period returns the budget window.
func (r Report) Period() Period { return r.period }

// PeriodStart returns the start of the window.
func (r Report) PeriodStart() time.Time { return r.start }

// ResetsAt is the end of the period, when counters start over.
func (r Report) ResetsAt() time.Time { return r.end }

// TokensUsed returns tokens consumed in the window.
func (r Report) TokensUsed() int64 { return r.used }

// TokensLimit returns the cap, 0 when unlimited.
func (r Report) TokensLimit() int64 { return r.limit }

// TokensRemaining returns tokens left, -1 when unlimited.
func (r Report) TokensRemaining() int64 { return r.remaining }

// Action is "warn" or "reject"; empty when no budget is configured.
func (r Report) Action() string { return r.action }

// Exhausted reports whether a limited budget is spent.
func (r Report) Exhausted() bool { return r.limit > 0 && r.remaining <= 0 }
