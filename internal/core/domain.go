package core

import "errors"

// OtherCodename identifies the fallback category.
const OtherCodename = "other"

type (
	// CategoryRecord is a category row as stored, aliases still comma separated.
	CategoryRecord struct {
		Codename      string
		Name          string
		IsBaseExpense bool
		Aliases       string
	}

	Category struct {
		Codename      string
		Name          string
		IsBaseExpense bool // counts toward the daily budget
		Aliases       []string
	}

	// Message is a parsed "amount category" text.
	Message struct {
		Amount       int64
		CategoryText string
	}

	// Expense is what the bot shows back to the user. ID is nil until the
	// row is read back from storage.
	Expense struct {
		ID           *int64
		Amount       int64
		CategoryName string // empty when the category no longer exists
	}

	// NewExpense is the row written for every accepted message.
	NewExpense struct {
		Amount           int64
		Created          string // local time, TimestampLayout
		CategoryCodename string
		RawText          string
	}

	// ExpenseRecord is a full stored expense row.
	ExpenseRecord struct {
		ID               int64
		Amount           int64
		Created          string
		CategoryCodename string
		CategoryName     string
		RawText          string
	}
)

var (
	ErrNoFallbackCategory = errors.New("no category matched and there is no fallback category")
	ErrInvalidExpenseID   = errors.New("invalid expense id")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCodename      = errors.New("empty category codename")
)

// MalformedInputError is returned when a message does not look like
// "amount category". Message is safe to show to the user as is.
type MalformedInputError struct {
	Message string
}

func (e *MalformedInputError) Error() string {
	return e.Message
}

// Validate checks a new expense before it is written.
func (e NewExpense) Validate() error {
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if e.CategoryCodename == "" {
		return ErrEmptyCodename
	}
	return nil
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}
