package core

// CategoryTotal holds the per-payment subtotals of one category.
type CategoryTotal struct {
	Category string
	Cash     int64
	Online   int64
}

// Total returns cash plus online.
func (c CategoryTotal) Total() int64 {
	return c.Cash + c.Online
}

// Summary is the result of aggregating records over a window.
// ByCategory is ordered by first appearance in the record set.
type Summary struct {
	Cash       int64
	Online     int64
	ByCategory []CategoryTotal
}

// Total returns the grand total across both payment methods.
func (s Summary) Total() int64 {
	return s.Cash + s.Online
}
