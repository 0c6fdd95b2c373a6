package core

import "time"

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Clock reports the current time in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location) Clock {
	return NewClockFunc(loc, time.Now)
}

// NewClockFunc uses now as the time source.
func NewClockFunc(loc *time.Location, now func() time.Time) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc, now: now}
}

func (c Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Timestamp formats the current local time the way expenses are stored.
func (c Clock) Timestamp() string {
	return c.Now().Format(TimestampLayout)
}

func (c Clock) Location() *time.Location {
	return c.loc
}

// Period is an inclusive range of calendar days.
type Period struct {
	From time.Time
	To   time.Time
	// Days is the number of days the budget ceiling is computed for.
	Days int
}

func (p Period) FromDate() string { return p.From.Format(DateLayout) }
func (p Period) ToDate() string   { return p.To.Format(DateLayout) }

// Ceiling is dailyLimit times the elapsed days of the period.
func (p Period) Ceiling(dailyLimit int64) int64 {
	return dailyLimit * int64(p.Days)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TodayPeriod is the calendar day of now.
func TodayPeriod(now time.Time) Period {
	day := startOfDay(now)
	return Period{From: day, To: day, Days: 1}
}

// CurrentMonthPeriod runs from the first of the month through today.
func CurrentMonthPeriod(now time.Time) Period {
	y, m, d := now.Date()
	return Period{
		From: time.Date(y, m, 1, 0, 0, 0, 0, now.Location()),
		To:   startOfDay(now),
		Days: d,
	}
}

// PreviousMonthPeriod covers the whole month before now.
func PreviousMonthPeriod(now time.Time) Period {
	y, m, _ := now.Date()
	// day 0 of the current month is the last day of the previous one
	last := time.Date(y, m, 0, 0, 0, 0, 0, now.Location())
	first := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, now.Location())
	return Period{From: first, To: last, Days: last.Day()}
}
