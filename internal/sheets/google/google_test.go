package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensebot/internal/config"
	"expensebot/internal/core"
)

// fakeSheet serves the three Values calls the client makes.
type fakeSheet struct {
	mu      sync.Mutex
	ids     [][]interface{}
	appends []gsheet.ValueRange
	clears  []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appends = append(f.appends, vr)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "'Expenses'!A2:E2"},
		})
	case strings.HasSuffix(path, ":clear"):
		f.clears = append(f.clears, path[strings.LastIndex(path, "/")+1:])
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.ids})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, sheet *fakeSheet) *Client {
	t.Helper()
	srv := httptest.NewServer(sheet)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), "sheet-id", "Expenses",
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

var record = core.ExpenseRecord{
	ID:               7,
	Amount:           250,
	Created:          "2026-03-17 10:15:00",
	CategoryCodename: "taxi",
	CategoryName:     "Taxi",
	RawText:          "250 taxi",
}

func TestClient_Append(t *testing.T) {
	sheet := &fakeSheet{ids: [][]interface{}{{"5"}}}
	c := newTestClient(t, sheet)

	if err := c.Append(context.Background(), record); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(sheet.appends) != 1 {
		t.Fatalf("expected one append, got %d", len(sheet.appends))
	}
	row := sheet.appends[0].Values[0]
	if len(row) != 5 || cellString(row[0]) != "7" || row[1] != record.Created || row[3] != "Taxi" || row[4] != "250 taxi" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestClient_AppendSkipsMirroredExpense(t *testing.T) {
	sheet := &fakeSheet{ids: [][]interface{}{{"5"}, {"7"}}}
	c := newTestClient(t, sheet)

	if err := c.Append(context.Background(), record); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(sheet.appends) != 0 {
		t.Fatalf("expected no append for an existing row, got %d", len(sheet.appends))
	}
}

func TestClient_AppendRejectsUnsavedExpense(t *testing.T) {
	c := newTestClient(t, &fakeSheet{})
	err := c.Append(context.Background(), core.ExpenseRecord{Amount: 10})
	if !errors.Is(err, core.ErrInvalidExpenseID) {
		t.Fatalf("expected ErrInvalidExpenseID, got %v", err)
	}
}

func TestClient_Delete(t *testing.T) {
	sheet := &fakeSheet{ids: [][]interface{}{{"id"}, {"5"}, {"7"}}}
	c := newTestClient(t, sheet)

	if err := c.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(sheet.clears) != 1 || !strings.Contains(sheet.clears[0], "A3:E3") {
		t.Fatalf("unexpected clears %v", sheet.clears)
	}

	if err := c.Delete(context.Background(), 99); err != nil {
		t.Fatalf("Delete of a missing row: %v", err)
	}
	if len(sheet.clears) != 1 {
		t.Fatal("missing rows must not be cleared")
	}
}

func TestClient_SheetError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(context.Background(), "sheet-id", "Expenses",
		goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(context.Background(), 1); err == nil {
		t.Fatal("expected an error from a failing sheet")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Expenses", goption.WithoutAuthentication())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr bool
	}{
		{"inline wins", config.Config{GoogleServiceAccountJSON: `{"inline":true}`, GoogleServiceAccountFile: file}, `{"inline":true}`, false},
		{"file", config.Config{GoogleServiceAccountFile: file}, `{"type":"service_account"}`, false},
		{"missing file", config.Config{GoogleServiceAccountFile: filepath.Join(t.TempDir(), "nope.json")}, "", true},
		{"none", config.Config{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := credentialsJSON(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRowOf(t *testing.T) {
	values := [][]interface{}{{"id"}, {}, {" 12 "}, {float64(1000000)}}
	tests := []struct {
		id    int64
		row   int
		found bool
	}{
		{12, 3, true},
		{1000000, 4, true},
		{5, 0, false},
	}
	for _, tt := range tests {
		row, ok := RowOf(values, tt.id)
		if row != tt.row || ok != tt.found {
			t.Errorf("RowOf(%d) = %d, %v; want %d, %v", tt.id, row, ok, tt.row, tt.found)
		}
	}
}

func TestRowFallsBackToCodename(t *testing.T) {
	r := record
	r.CategoryName = ""
	if got := Row(r)[3]; got != "taxi" {
		t.Errorf("category cell = %v, want taxi", got)
	}
}
