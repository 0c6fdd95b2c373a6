package worker

import (
	"context"
	"errors"
	"fmt"

	"expensebot/internal/amqp"
	applog "expensebot/internal/log"
	"expensebot/internal/sheets"
	"expensebot/internal/storage"
)

// SyncWorker mirrors stored expenses into a spreadsheet, driven by the
// events the bot publishes after every write.
type SyncWorker struct {
	store  storage.ExpenseStore
	mirror sheets.ExpenseMirror
	logger *applog.Logger
}

func NewSyncWorker(store storage.ExpenseStore, mirror sheets.ExpenseMirror, logger *applog.Logger) *SyncWorker {
	return &SyncWorker{
		store:  store,
		mirror: mirror,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent processes one event. A returned error asks for redelivery.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	w.logger.InfoContext(ctx, "Processing expense event",
		applog.FieldExpenseID, ev.ID,
		"type", ev.Type,
		"timestamp", ev.Timestamp)

	switch ev.Type {
	case amqp.EventExpenseCreated:
		return w.handleCreated(ctx, ev.ID)
	case amqp.EventExpenseDeleted:
		return w.handleDeleted(ctx, ev.ID)
	default:
		// Unknown types are dropped; redelivering them cannot help.
		w.logger.WarnContext(ctx, "Ignoring unknown event type", "type", ev.Type)
		return nil
	}
}

func (w *SyncWorker) handleCreated(ctx context.Context, id int64) error {
	rec, err := w.store.GetExpense(ctx, id)
	if errors.Is(err, storage.ErrExpenseNotFound) {
		// Deleted before we got to it; the delete event follows.
		w.logger.InfoContext(ctx, "Expense no longer stored, skipping", applog.FieldExpenseID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}
	if err := w.mirror.Append(ctx, *rec); err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}
	w.logger.InfoContext(ctx, "Successfully synced expense",
		applog.NewFields().
			WithOperation(applog.OpSync).
			WithExpense(rec.Amount, rec.CategoryCodename).
			ToSlice()...)
	return nil
}

func (w *SyncWorker) handleDeleted(ctx context.Context, id int64) error {
	if err := w.mirror.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete from sheets: %w", err)
	}
	w.logger.InfoContext(ctx, "Successfully deleted expense",
		applog.FieldExpenseID, id,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

// StartupSync mirrors the most recent expenses, covering events that were
// published while the worker was down. Failures are logged and counted.
func (w *SyncWorker) StartupSync(ctx context.Context, limit int) error {
	recent, err := w.store.LastExpenses(ctx, limit)
	if err != nil {
		return fmt.Errorf("list recent expenses: %w", err)
	}

	synced, failed := 0, 0
	for _, e := range recent {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.ID == nil {
			continue
		}
		if err := w.handleCreated(ctx, *e.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync expense during startup",
				applog.FieldExpenseID, *e.ID, applog.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		"total", len(recent),
		"synced", synced,
		"errors", failed)
	return nil
}
