package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"expensebot/internal/core"
	"expensebot/internal/storage"
)

const defaultDailyLimit = 500

type row struct {
	id int64
	e  core.NewExpense
}

// Store keeps everything in process. Used for local runs and tests.
type Store struct {
	mu     sync.Mutex
	cats   []core.CategoryRecord
	limit  int64
	nextID int64
	items  []row
}

var _ storage.Repository = (*Store)(nil)

func New(cats []core.CategoryRecord, dailyLimit int64) *Store {
	return &Store{cats: dedupe(cats), limit: dailyLimit, nextID: 1}
}

// NewFromFiles seeds the store from base/categories.txt
// ("codename|name|is_base_expense|aliases" per line) and base/budget.txt.
func NewFromFiles(base string) *Store {
	var cats []core.CategoryRecord
	for _, line := range readLines(filepath.Join(base, "categories.txt")) {
		if c, ok := parseCategoryLine(line); ok {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		cats = DefaultCategories()
	}

	limit := int64(defaultDailyLimit)
	if lines := readLines(filepath.Join(base, "budget.txt")); len(lines) > 0 {
		if v, err := strconv.ParseInt(lines[0], 10, 64); err == nil {
			limit = v
		}
	}
	return New(cats, limit)
}

// DefaultCategories mirrors the seed migration.
func DefaultCategories() []core.CategoryRecord {
	return []core.CategoryRecord{
		{Codename: "products", Name: "Products", IsBaseExpense: true, Aliases: "food, groceries, supermarket"},
		{Codename: "coffee", Name: "Coffee", IsBaseExpense: true},
		{Codename: "dinner", Name: "Dinner", IsBaseExpense: true, Aliases: "lunch, breakfast"},
		{Codename: "cafe", Name: "Cafe", IsBaseExpense: true, Aliases: "restaurant, mcdonalds, kfc"},
		{Codename: "transport", Name: "Transport", Aliases: "metro, bus, tram"},
		{Codename: "taxi", Name: "Taxi", Aliases: "uber, bolt, uklon"},
		{Codename: "phone", Name: "Phone", Aliases: "mobile, kyivstar"},
		{Codename: "books", Name: "Books", Aliases: "literature, kindle"},
		{Codename: "internet", Name: "Internet", Aliases: "inet"},
		{Codename: "subscriptions", Name: "Subscriptions", Aliases: "subscription"},
		{Codename: core.OtherCodename, Name: "Other", IsBaseExpense: true},
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) FetchCategories(_ context.Context) ([]core.CategoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CategoryRecord(nil), s.cats...), nil
}

func (s *Store) InsertExpense(_ context.Context, e core.NewExpense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.items = append(s.items, row{id: id, e: e})
	return id, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.id == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) LastExpenses(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := append([]row(nil), s.items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].e.Created != sorted[j].e.Created {
			return sorted[i].e.Created > sorted[j].e.Created
		}
		return sorted[i].id > sorted[j].id
	})
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	out := make([]core.Expense, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, core.Expense{
			ID:           core.Int64Ptr(r.id),
			Amount:       r.e.Amount,
			CategoryName: s.categoryLocked(r.e.CategoryCodename).Name,
		})
	}
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (*core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.id == id {
			return &core.ExpenseRecord{
				ID:               r.id,
				Amount:           r.e.Amount,
				Created:          r.e.Created,
				CategoryCodename: r.e.CategoryCodename,
				CategoryName:     s.categoryLocked(r.e.CategoryCodename).Name,
				RawText:          r.e.RawText,
			}, nil
		}
	}
	return nil, storage.ErrExpenseNotFound
}

func (s *Store) PeriodTotals(_ context.Context, from, to string) (core.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t core.Totals
	for _, r := range s.items {
		day := r.e.Created
		if len(day) > len(core.DateLayout) {
			day = day[:len(core.DateLayout)]
		}
		if day < from || day > to {
			continue
		}
		t.Total += r.e.Amount
		if s.categoryLocked(r.e.CategoryCodename).IsBaseExpense {
			t.Base += r.e.Amount
		}
	}
	return t, nil
}

func (s *Store) DailyLimit(_ context.Context) (int64, error) {
	return s.limit, nil
}

func (s *Store) categoryLocked(codename string) core.CategoryRecord {
	for _, c := range s.cats {
		if c.Codename == codename {
			return c
		}
	}
	return core.CategoryRecord{}
}

func parseCategoryLine(line string) (core.CategoryRecord, bool) {
	parts := strings.SplitN(line, "|", 4)
	if len(parts) < 2 {
		return core.CategoryRecord{}, false
	}
	c := core.CategoryRecord{
		Codename: strings.TrimSpace(parts[0]),
		Name:     strings.TrimSpace(parts[1]),
	}
	if c.Codename == "" || c.Name == "" {
		return core.CategoryRecord{}, false
	}
	if len(parts) > 2 {
		c.IsBaseExpense, _ = strconv.ParseBool(strings.TrimSpace(parts[2]))
	}
	if len(parts) > 3 {
		c.Aliases = parts[3]
	}
	return c, true
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// dedupe keeps the first record of every codename, preserving order.
func dedupe(in []core.CategoryRecord) []core.CategoryRecord {
	seen := map[string]struct{}{}
	out := make([]core.CategoryRecord, 0, len(in))
	for _, c := range in {
		if _, ok := seen[c.Codename]; ok {
			continue
		}
		seen[c.Codename] = struct{}{}
		out = append(out, c)
	}
	return out
}
