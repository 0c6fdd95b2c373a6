package sheets

import (
	"context"

	"expensebot/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseMirror keeps a spreadsheet copy of the stored expenses.
	// Both operations are idempotent so redelivered events are harmless.
	ExpenseMirror interface {
		Append(ctx context.Context, e core.ExpenseRecord) error
		Delete(ctx context.Context, id int64) error
	}
)
