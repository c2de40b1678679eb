// Package report aggregates stored expense records into per-sender
// summaries over standing and custom date windows.
package report

import (
	"time"

	"chitieu/internal/core"
)

// Period names a summary window.
type Period int

const (
	PeriodToday Period = iota + 1
	PeriodSevenDays
	PeriodMonth
	PeriodAll
	PeriodCustom
)

func (p Period) String() string {
	switch p {
	case PeriodToday:
		return "today"
	case PeriodSevenDays:
		return "7days"
	case PeriodMonth:
		return "month"
	case PeriodAll:
		return "all"
	case PeriodCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Window bounds the records counted in a summary. Start is inclusive. A zero
// End leaves the window open; otherwise End is inclusive too. AsOf is the
// instant the window was computed and is only used for display.
type Window struct {
	Period Period
	Start  time.Time
	End    time.Time
	AsOf   time.Time
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	if ts.Before(w.Start) {
		return false
	}
	return w.End.IsZero() || !ts.After(w.End)
}

// StandingWindow returns the window for a fixed period ending at now. The
// calendar boundaries (midnight, first of month) use now's location.
func StandingWindow(p Period, now time.Time) Window {
	w := Window{Period: p, AsOf: now}
	switch p {
	case PeriodToday:
		w.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodSevenDays:
		w.Start = now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		w.Start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		w.Period = PeriodAll
		w.Start = time.Unix(0, 0).In(now.Location())
	}
	return w
}

// CustomWindow resolves a user-typed day/month range against now's year.
// An end before the start is moved into the following year. The end is
// pinned to 23:59:59 of its day.
func CustomWindow(start, end core.DayMonth, now time.Time) Window {
	loc := now.Location()
	year := now.Year()

	from := start.In(year, loc)
	to := end.In(year, loc).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	if to.Before(from) {
		to = end.In(year+1, loc).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}
	return Window{Period: PeriodCustom, Start: from, End: to, AsOf: now}
}
