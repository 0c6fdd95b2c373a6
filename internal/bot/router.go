package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"expensebot/internal/core"
)

const (
	HelpMessage = "Bot for accounting expenses\n\n" +
		"To add expense: 250 taxi\n" +
		"Today's statistics: /today\n" +
		"Current month's statistics: /month\n" +
		"Previous month's statistics: /previous\n" +
		"Last added expenses: /expenses\n" +
		"Categories of expenditure: /categories"

	ExpenseDeletedMessage = "Expense Deleted"
	NoExpensesMessage     = "Expenses have not been added yet"
	InvalidDeleteMessage  = "Can not delete: write the expense id right after /del, e.g. /del12"

	deletePrefix = "/del"
)

type (
	Expenses interface {
		Add(ctx context.Context, raw string) (core.Expense, error)
		Delete(ctx context.Context, id int64) error
		Last(ctx context.Context) ([]core.Expense, error)
	}

	Statistics interface {
		Today(ctx context.Context) (string, error)
		Month(ctx context.Context) (string, error)
		PreviousMonth(ctx context.Context) (string, error)
	}

	Categories interface {
		All(ctx context.Context) ([]core.Category, error)
	}
)

// Router turns the text of one message into the reply text.
type Router struct {
	expenses   Expenses
	stats      Statistics
	categories Categories
	currency   string
}

func NewRouter(expenses Expenses, stats Statistics, categories Categories, currency string) *Router {
	return &Router{
		expenses:   expenses,
		stats:      stats,
		categories: categories,
		currency:   currency,
	}
}

// Command returns the command name of text without the leading slash and
// any "@botname" suffix, or "" when text is not a command.
func Command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text[1:])
	if len(cmd) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(cmd[0], "@")
	return name
}

// Handle returns the reply for text. Input mistakes are answered in the
// reply; only storage or transport failures come back as errors.
func (r *Router) Handle(ctx context.Context, text string) (string, error) {
	if strings.HasPrefix(text, deletePrefix) {
		return r.deleteExpense(ctx, text)
	}

	switch Command(text) {
	case "start", "help":
		return HelpMessage, nil
	case "categories":
		return r.listCategories(ctx)
	case "today":
		return r.stats.Today(ctx)
	case "month":
		return r.stats.Month(ctx)
	case "previous":
		return r.stats.PreviousMonth(ctx)
	case "expenses":
		return r.listExpenses(ctx)
	}
	return r.addExpense(ctx, text)
}

// ParseDeleteID extracts the id from "/del12".
func ParseDeleteID(text string) (int64, error) {
	raw, _, _ := strings.Cut(strings.TrimPrefix(text, deletePrefix), "@")
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrInvalidExpenseID
	}
	return id, nil
}

func (r *Router) deleteExpense(ctx context.Context, text string) (string, error) {
	id, err := ParseDeleteID(text)
	if err != nil {
		return InvalidDeleteMessage, nil
	}
	if err := r.expenses.Delete(ctx, id); err != nil {
		return "", err
	}
	return ExpenseDeletedMessage, nil
}

func (r *Router) listCategories(ctx context.Context) (string, error) {
	cats, err := r.categories.All(ctx)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		lines = append(lines, fmt.Sprintf("%s (%s)", c.Name, strings.Join(c.Aliases, ", ")))
	}
	return "Expense categories:\n\n* " + strings.Join(lines, "\n* "), nil
}

func (r *Router) listExpenses(ctx context.Context) (string, error) {
	last, err := r.expenses.Last(ctx)
	if err != nil {
		return "", err
	}
	if len(last) == 0 {
		return NoExpensesMessage, nil
	}
	rows := make([]string, 0, len(last))
	for _, e := range last {
		name := e.CategoryName
		if name == "" {
			name = "unknown category"
		}
		var id int64
		if e.ID != nil {
			id = *e.ID
		}
		rows = append(rows, fmt.Sprintf("%d %s on %s - press %s%d to delete", e.Amount, r.currency, name, deletePrefix, id))
	}
	return "Last saved expenses:\n\n* " + strings.Join(rows, "\n\n* "), nil
}

func (r *Router) addExpense(ctx context.Context, text string) (string, error) {
	e, err := r.expenses.Add(ctx, text)
	var malformed *core.MalformedInputError
	if errors.As(err, &malformed) {
		return malformed.Message, nil
	}
	if err != nil {
		return "", err
	}
	today, err := r.stats.Today(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added expenses %d %s on %s.\n\n%s", e.Amount, r.currency, e.CategoryName, today), nil
}
