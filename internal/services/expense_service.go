package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensebot/internal/amqp"
	"expensebot/internal/core"
	"expensebot/internal/storage"
)

// LastExpensesLimit is how many expenses /expenses shows.
const LastExpensesLimit = 10

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, t amqp.EventType, id int64) error
}

// ExpenseService records expenses and announces changes over AMQP.
type ExpenseService struct {
	store      storage.ExpenseStore
	categories *CategoryService
	publisher  EventPublisher
	clock      core.Clock
}

// NewExpenseService accepts a nil publisher when AMQP is disabled.
func NewExpenseService(store storage.ExpenseStore, categories *CategoryService, publisher EventPublisher, clock core.Clock) *ExpenseService {
	return &ExpenseService{
		store:      store,
		categories: categories,
		publisher:  publisher,
		clock:      clock,
	}
}

// Add parses raw, resolves its category and persists it. The returned
// expense carries no ID.
func (s *ExpenseService) Add(ctx context.Context, raw string) (core.Expense, error) {
	msg, err := core.ParseMessage(raw)
	if err != nil {
		return core.Expense{}, err
	}

	category, err := s.categories.Resolve(ctx, msg.CategoryText)
	if err != nil {
		return core.Expense{}, err
	}

	// Save first; the event is best effort
	id, err := s.store.InsertExpense(ctx, core.NewExpense{
		Amount:           msg.Amount,
		Created:          s.clock.Timestamp(),
		CategoryCodename: category.Codename,
		RawText:          raw,
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense added",
		"id", id,
		"amount", msg.Amount,
		"category", category.Codename)

	s.publish(ctx, amqp.EventExpenseCreated, id)

	return core.Expense{Amount: msg.Amount, CategoryName: category.Name}, nil
}

// Delete removes an expense; unknown ids are not an error.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	s.publish(ctx, amqp.EventExpenseDeleted, id)
	return nil
}

// Last returns the most recent expenses, newest first.
func (s *ExpenseService) Last(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.store.LastExpenses(ctx, LastExpensesLimit)
	if err != nil {
		return nil, fmt.Errorf("list last expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) publish(ctx context.Context, t amqp.EventType, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping expense event", "type", t, "id", id)
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, t, id); err != nil {
		// the row is already saved locally
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"type", t, "id", id, "error", err)
	}
}
