package storage

import (
	"context"
	"errors"

	"expensebot/internal/core"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrNoBudget        = errors.New("budget is not configured")
)

// Ports implemented by every backend.
type (
	CategoryReader interface {
		// FetchCategories returns every category row in storage order.
		FetchCategories(ctx context.Context) ([]core.CategoryRecord, error)
	}

	ExpenseStore interface {
		InsertExpense(ctx context.Context, e core.NewExpense) (id int64, err error)
		// DeleteExpense succeeds when the id does not exist.
		DeleteExpense(ctx context.Context, id int64) error
		// LastExpenses returns up to limit expenses, newest first.
		LastExpenses(ctx context.Context, limit int) ([]core.Expense, error)
		GetExpense(ctx context.Context, id int64) (*core.ExpenseRecord, error)
	}

	StatisticsReader interface {
		// PeriodTotals sums amounts whose created date is within [from, to],
		// both formatted as core.DateLayout.
		PeriodTotals(ctx context.Context, from, to string) (core.Totals, error)
		DailyLimit(ctx context.Context) (int64, error)
	}

	Repository interface {
		CategoryReader
		ExpenseStore
		StatisticsReader
		Close() error
	}
)
