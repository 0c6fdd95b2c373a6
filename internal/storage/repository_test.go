package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"expensebot/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_SeededCategories(t *testing.T) {
	repo := newTestRepo(t)
	cats, err := repo.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("expected seeded categories")
	}
	if cats[0].Codename != "products" || cats[len(cats)-1].Codename != "other" {
		t.Errorf("unexpected order: first=%s last=%s", cats[0].Codename, cats[len(cats)-1].Codename)
	}
	if !cats[0].IsBaseExpense {
		t.Error("products should be a base expense")
	}

	limit, err := repo.DailyLimit(context.Background())
	if err != nil || limit != 500 {
		t.Fatalf("DailyLimit = %d, %v", limit, err)
	}
}

func TestSQLiteRepository_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		repo.Close()
	}
}

func TestSQLiteRepository_ExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rows := []core.NewExpense{
		{Amount: 100, Created: "2026-10-13 10:00:00", CategoryCodename: "taxi", RawText: "100 taxi"},
		{Amount: 250, Created: "2026-10-14 09:00:00", CategoryCodename: "products", RawText: "250 food"},
		{Amount: 40, Created: "2026-10-14 12:30:00", CategoryCodename: "removed", RawText: "40 thing"},
	}
	var ids []int64
	for _, e := range rows {
		id, err := repo.InsertExpense(ctx, e)
		if err != nil {
			t.Fatalf("InsertExpense: %v", err)
		}
		ids = append(ids, id)
	}

	last, err := repo.LastExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("LastExpenses: %v", err)
	}
	if len(last) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(last))
	}
	if *last[0].ID != ids[2] || last[0].CategoryName != "" {
		t.Errorf("newest expense should come first with no category name, got %+v", last[0])
	}
	if last[1].CategoryName != "Products" || last[2].CategoryName != "Taxi" {
		t.Errorf("unexpected category names: %q %q", last[1].CategoryName, last[2].CategoryName)
	}

	limited, err := repo.LastExpenses(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("LastExpenses(1) = %v, %v", limited, err)
	}

	got, err := repo.GetExpense(ctx, ids[1])
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.RawText != "250 food" || got.CategoryName != "Products" || got.Created != "2026-10-14 09:00:00" {
		t.Errorf("unexpected record %+v", got)
	}

	if err := repo.DeleteExpense(ctx, ids[1]); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, ids[1]); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
	if err := repo.DeleteExpense(ctx, 9999); err != nil {
		t.Fatalf("deleting a missing id must not fail: %v", err)
	}
}

func TestSQLiteRepository_PeriodTotals(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, e := range []core.NewExpense{
		{Amount: 100, Created: "2026-09-30 23:59:59", CategoryCodename: "products", RawText: "a"},
		{Amount: 200, Created: "2026-10-01 00:00:00", CategoryCodename: "products", RawText: "b"},
		{Amount: 300, Created: "2026-10-14 18:00:00", CategoryCodename: "taxi", RawText: "c"},
		{Amount: 50, Created: "2026-10-14 19:00:00", CategoryCodename: "gone", RawText: "d"},
	} {
		if _, err := repo.InsertExpense(ctx, e); err != nil {
			t.Fatalf("InsertExpense: %v", err)
		}
	}

	tests := []struct {
		name     string
		from, to string
		want     core.Totals
	}{
		{"whole october", "2026-10-01", "2026-10-31", core.Totals{Total: 550, Base: 200}},
		{"single day", "2026-10-14", "2026-10-14", core.Totals{Total: 350, Base: 0}},
		{"september", "2026-09-01", "2026-09-30", core.Totals{Total: 100, Base: 100}},
		{"empty", "2026-08-01", "2026-08-31", core.Totals{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.PeriodTotals(ctx, tt.from, tt.to)
			if err != nil {
				t.Fatalf("PeriodTotals: %v", err)
			}
			if got != tt.want {
				t.Errorf("PeriodTotals(%s, %s) = %+v, want %+v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSQLiteRepository_DailyLimitMissing(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.db.Exec(`DELETE FROM budget`); err != nil {
		t.Fatalf("clear budget: %v", err)
	}
	if _, err := repo.DailyLimit(context.Background()); !errors.Is(err, ErrNoBudget) {
		t.Fatalf("expected ErrNoBudget, got %v", err)
	}
}

func TestSQLiteRepository_InsertRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.InsertExpense(context.Background(), core.NewExpense{Amount: 1}); !errors.Is(err, core.ErrEmptyCodename) {
		t.Fatalf("expected ErrEmptyCodename, got %v", err)
	}
}
