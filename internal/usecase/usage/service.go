package usage

import (
	"context"
	"time"

	domusage "github.com/trebound/catalog-search/internal/domain/usage"
)

// Service reports generation token usage.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil when generation has no budget.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// WithClock replaces the clock used for period boundaries.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	r := domusage.Report{Period: period, Remaining: -1}

	switch period {
	case domusage.PeriodDay:
		r.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.End = r.Start.Add(24 * time.Hour)
		if s.br != nil {
			r.Limit = s.br.DailyLimit()
			r.Tokens = s.br.DailyUsed()
			r.Remaining = s.br.RemainingDaily()
		}
	default:
		r.Period = domusage.PeriodMonth
		r.Start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.End = r.Start.AddDate(0, 1, 0)
		if s.br != nil {
			r.Limit = s.br.MonthlyLimit()
			r.Tokens = s.br.MonthlyUsed()
			r.Remaining = s.br.RemainingMonthly()
		}
	}

	return r
}
