package core

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("timezone %s unavailable: %v", name, err)
	}
	return loc
}

func TestClockUsesLocation(t *testing.T) {
	loc := mustLoad(t, "Europe/Kiev")
	// 22:30 UTC on 14 Oct is already 15 Oct in Kyiv (UTC+3 in summer time)
	c := NewClockFunc(loc, func() time.Time { return time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC) })
	if got := c.Timestamp(); got != "2026-10-15 01:30:00" {
		t.Fatalf("Timestamp() = %s", got)
	}
	if p := TodayPeriod(c.Now()); p.FromDate() != "2026-10-15" || p.ToDate() != "2026-10-15" {
		t.Fatalf("unexpected today period %s..%s", p.FromDate(), p.ToDate())
	}
}

func TestPeriods(t *testing.T) {
	now := time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		p          Period
		from, to   string
		days       int
		ceiling100 int64
	}{
		{"today", TodayPeriod(now), "2026-03-17", "2026-03-17", 1, 100},
		{"current month", CurrentMonthPeriod(now), "2026-03-01", "2026-03-17", 17, 1700},
		{"previous month february", PreviousMonthPeriod(now), "2026-02-01", "2026-02-28", 28, 2800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.FromDate() != tt.from || tt.p.ToDate() != tt.to {
				t.Errorf("range %s..%s, want %s..%s", tt.p.FromDate(), tt.p.ToDate(), tt.from, tt.to)
			}
			if tt.p.Days != tt.days {
				t.Errorf("days %d, want %d", tt.p.Days, tt.days)
			}
			if got := tt.p.Ceiling(100); got != tt.ceiling100 {
				t.Errorf("ceiling %d, want %d", got, tt.ceiling100)
			}
		})
	}
}

func TestPreviousMonthAcrossYear(t *testing.T) {
	p := PreviousMonthPeriod(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	if p.FromDate() != "2025-12-01" || p.ToDate() != "2025-12-31" || p.Days != 31 {
		t.Fatalf("unexpected period %s..%s (%d)", p.FromDate(), p.ToDate(), p.Days)
	}
	leap := PreviousMonthPeriod(time.Date(2028, 3, 31, 23, 0, 0, 0, time.UTC))
	if leap.Days != 29 {
		t.Fatalf("leap february days = %d", leap.Days)
	}
}
