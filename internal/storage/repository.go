package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensebot/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between requests
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) FetchCategories(ctx context.Context) ([]core.CategoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT codename, name, is_base_expense, aliases FROM category ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryRecord
	for rows.Next() {
		var c core.CategoryRecord
		if err := rows.Scan(&c.Codename, &c.Name, &c.IsBaseExpense, &c.Aliases); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.NewExpense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validate expense: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expense (amount, created, category_codename, raw_text) VALUES (?, ?, ?, ?)`,
		e.Amount, e.Created, e.CategoryCodename, e.RawText)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", id,
		"amount", e.Amount,
		"category", e.CategoryCodename,
		"created", e.Created)

	return id, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expense WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) LastExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.amount, c.name
		FROM expense e LEFT JOIN category c ON c.codename = e.category_codename
		ORDER BY e.created DESC, e.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query last expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			id, amount int64
			name       sql.NullString
		)
		if err := rows.Scan(&id, &amount, &name); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, core.Expense{ID: core.Int64Ptr(id), Amount: amount, CategoryName: name.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (*core.ExpenseRecord, error) {
	var (
		e    core.ExpenseRecord
		name sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.amount, e.created, e.category_codename, c.name, e.raw_text
		FROM expense e LEFT JOIN category c ON c.codename = e.category_codename
		WHERE e.id = ?`, id).
		Scan(&e.ID, &e.Amount, &e.Created, &e.CategoryCodename, &name, &e.RawText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense by id: %w", err)
	}
	e.CategoryName = name.String
	return &e, nil
}

func (r *SQLiteRepository) PeriodTotals(ctx context.Context, from, to string) (core.Totals, error) {
	var t core.Totals
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(e.amount), 0),
			COALESCE(SUM(CASE WHEN c.is_base_expense THEN e.amount ELSE 0 END), 0)
		FROM expense e LEFT JOIN category c ON c.codename = e.category_codename
		WHERE date(e.created) BETWEEN ? AND ?`, from, to).
		Scan(&t.Total, &t.Base)
	if err != nil {
		return core.Totals{}, fmt.Errorf("sum expenses %s..%s: %w", from, to, err)
	}
	return t, nil
}

func (r *SQLiteRepository) DailyLimit(ctx context.Context) (int64, error) {
	var limit int64
	err := r.db.QueryRowContext(ctx, `SELECT daily_limit FROM budget ORDER BY rowid LIMIT 1`).Scan(&limit)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoBudget
	}
	if err != nil {
		return 0, fmt.Errorf("get daily limit: %w", err)
	}
	return limit, nil
}
