package core

// Totals are the sums of a period.
type Totals struct {
	Total int64
	Base  int64 // only categories flagged as base expenses
}

// Empty reports whether nothing was spent in the period.
func (t Totals) Empty() bool {
	return t.Total == 0
}
