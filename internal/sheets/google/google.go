package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensebot/internal/config"
	"expensebot/internal/core"
	ports "expensebot/internal/sheets"
)

// Mirror rows are laid out as: id, created, amount, category, raw text.
const lastColumn = "E"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ExpenseMirror = (*Client)(nil)

// New creates a client for one sheet of a spreadsheet. Authentication and
// endpoint come from opts.
func New(ctx context.Context, spreadsheetID, sheetName string, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Expenses"
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// NewFromConfig creates a client authenticated with service account
// credentials, inline JSON first and then the credentials file.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"sheet", cfg.GoogleSheetName)

	return New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func credentialsJSON(cfg *config.Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.GoogleServiceAccountJSON) != "":
		return []byte(cfg.GoogleServiceAccountJSON), nil
	case strings.TrimSpace(cfg.GoogleServiceAccountFile) != "":
		data, err := os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Append adds the expense as a new row unless a row with its id exists.
func (c *Client) Append(ctx context.Context, e core.ExpenseRecord) error {
	if e.ID <= 0 {
		return core.ErrInvalidExpenseID
	}
	_, found, err := c.findRow(ctx, e.ID)
	if err != nil {
		return err
	}
	if found {
		slog.DebugContext(ctx, "Expense already mirrored", "expense_id", e.ID)
		return nil
	}

	vr := &gsheet.ValueRange{Values: [][]interface{}{Row(e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A:"+lastColumn), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	var updated string
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Mirrored expense", "expense_id", e.ID, "range", updated)
	return nil
}

// Delete clears the row holding the expense. A missing row is not an error.
func (c *Client) Delete(ctx context.Context, id int64) error {
	row, found, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		slog.DebugContext(ctx, "Expense not present in sheet", "expense_id", id)
		return nil
	}

	rng := c.a1(fmt.Sprintf("A%d:%s%d", row, lastColumn, row))
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("clear row %d: %w", row, err)
	}
	slog.InfoContext(ctx, "Removed mirrored expense", "expense_id", id, "row", row)
	return nil
}

// findRow returns the 1-based row whose first column holds id.
func (c *Client) findRow(ctx context.Context, id int64) (int, bool, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.a1("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read id column: %w", err)
	}
	row, ok := RowOf(resp.Values, id)
	return row, ok, nil
}

func (c *Client) a1(rng string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(c.sheetName, "'", "''"), rng)
}

// Row formats an expense for the sheet.
func Row(e core.ExpenseRecord) []interface{} {
	category := e.CategoryName
	if category == "" {
		category = e.CategoryCodename
	}
	return []interface{}{e.ID, e.Created, e.Amount, category, e.RawText}
}

// RowOf scans a single column of values for id.
func RowOf(values [][]interface{}, id int64) (int, bool) {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if cellString(row[0]) == want {
			return i + 1, true
		}
	}
	return 0, false
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
