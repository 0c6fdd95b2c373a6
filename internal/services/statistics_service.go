package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensebot/internal/core"
	"expensebot/internal/storage"
)

const (
	NoExpensesToday         = "No expenses yet"
	NoExpensesThisMonth     = "There are no expenses yet this month"
	NoExpensesPreviousMonth = "There were no expenses in previous month"
)

// StatisticsService renders period summaries as reply text.
type StatisticsService struct {
	reader   storage.StatisticsReader
	clock    core.Clock
	currency string
}

func NewStatisticsService(reader storage.StatisticsReader, clock core.Clock, currency string) *StatisticsService {
	return &StatisticsService{reader: reader, clock: clock, currency: currency}
}

func (s *StatisticsService) Today(ctx context.Context) (string, error) {
	p := core.TodayPeriod(s.clock.Now())
	totals, limit, err := s.load(ctx, p)
	if err != nil {
		return "", err
	}
	if totals.Empty() {
		return NoExpensesToday, nil
	}
	return fmt.Sprintf("Today's expenses:\n"+
		"total - %d %s\n"+
		"base expenses - %d %s out of %d %s\n\n"+
		"For the current month: /month",
		totals.Total, s.currency,
		totals.Base, s.currency, p.Ceiling(limit), s.currency), nil
}

func (s *StatisticsService) Month(ctx context.Context) (string, error) {
	p := core.CurrentMonthPeriod(s.clock.Now())
	totals, limit, err := s.load(ctx, p)
	if err != nil {
		return "", err
	}
	if totals.Empty() {
		return NoExpensesThisMonth, nil
	}
	return fmt.Sprintf("Current month expenses:\n"+
		"total - %d %s\n"+
		"base expenses - %d %s out of %d %s",
		totals.Total, s.currency,
		totals.Base, s.currency, p.Ceiling(limit), s.currency), nil
}

func (s *StatisticsService) PreviousMonth(ctx context.Context) (string, error) {
	p := core.PreviousMonthPeriod(s.clock.Now())
	totals, limit, err := s.load(ctx, p)
	if err != nil {
		return "", err
	}
	if totals.Empty() {
		return NoExpensesPreviousMonth, nil
	}
	return fmt.Sprintf("Previous month expenses:\n"+
		"total - %d %s\n"+
		"base expenses - %d %s out of %d %s",
		totals.Total, s.currency,
		totals.Base, s.currency, p.Ceiling(limit), s.currency), nil
}

// load reads the totals and the daily limit; the limit is never cached.
func (s *StatisticsService) load(ctx context.Context, p core.Period) (core.Totals, int64, error) {
	totals, err := s.reader.PeriodTotals(ctx, p.FromDate(), p.ToDate())
	if err != nil {
		return core.Totals{}, 0, fmt.Errorf("period totals: %w", err)
	}
	if totals.Empty() {
		return totals, 0, nil
	}
	limit, err := s.reader.DailyLimit(ctx)
	if err != nil {
		return core.Totals{}, 0, fmt.Errorf("daily limit: %w", err)
	}
	slog.DebugContext(ctx, "Computed period totals",
		"from", p.FromDate(),
		"to", p.ToDate(),
		"total", totals.Total,
		"base", totals.Base,
		"daily_limit", limit)
	return totals, limit, nil
}
