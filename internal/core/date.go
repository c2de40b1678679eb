package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DayMonth is a calendar day without a year, as typed by users ("20/12").
type DayMonth struct {
	Day   int
	Month int
}

var dayMonthPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)

// ParseDayMonth parses "D/M", "DD/MM" and mixed forms. Leading and trailing
// whitespace is ignored.
func ParseDayMonth(s string) (DayMonth, error) {
	m := dayMonthPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DayMonth{}, ErrInvalidDate
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return DayMonth{}, fmt.Errorf("%w: month %d out of range", ErrInvalidDate, month)
	}
	if day < 1 || day > 31 {
		return DayMonth{}, fmt.Errorf("%w: day %d out of range", ErrInvalidDate, day)
	}
	return DayMonth{Day: day, Month: month}, nil
}

// In returns the start of the day in the given year and location.
// Out-of-range days roll over the same way time.Date does (31/04 -> 01/05).
func (d DayMonth) In(year int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

// String renders the value as DD/MM.
func (d DayMonth) String() string {
	return fmt.Sprintf("%02d/%02d", d.Day, d.Month)
}

// IsZero reports whether the value was never set.
func (d DayMonth) IsZero() bool {
	return d.Day == 0 && d.Month == 0
}

// FormatDate renders t as zero-padded DD/MM in t's own location.
func FormatDate(t time.Time) string {
	return t.Format("02/01")
}
