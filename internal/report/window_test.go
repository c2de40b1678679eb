package report

import (
	"testing"
	"time"

	"chitieu/internal/core"
)

var ict = time.FixedZone("ICT", 7*3600)

func TestStandingWindow(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, ict)

	tests := []struct {
		period    Period
		wantStart time.Time
	}{
		{PeriodToday, time.Date(2025, 3, 15, 0, 0, 0, 0, ict)},
		{PeriodSevenDays, time.Date(2025, 3, 8, 14, 30, 0, 0, ict)},
		{PeriodMonth, time.Date(2025, 3, 1, 0, 0, 0, 0, ict)},
		{PeriodAll, time.Unix(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			w := StandingWindow(tt.period, now)
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", w.Start, tt.wantStart)
			}
			if !w.End.IsZero() {
				t.Errorf("End = %v, want open", w.End)
			}
			if w.Period != tt.period {
				t.Errorf("Period = %v, want %v", w.Period, tt.period)
			}
			if !w.AsOf.Equal(now) {
				t.Errorf("AsOf = %v, want %v", w.AsOf, now)
			}
		})
	}
}

func TestCustomWindow(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, ict)

	tests := []struct {
		name       string
		start, end core.DayMonth
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{
			name:      "same year",
			start:     core.DayMonth{Day: 1, Month: 1},
			end:       core.DayMonth{Day: 15, Month: 1},
			wantStart: time.Date(2025, 1, 1, 0, 0, 0, 0, ict),
			wantEnd:   time.Date(2025, 1, 15, 23, 59, 59, 0, ict),
		},
		{
			name:      "end wraps into next year",
			start:     core.DayMonth{Day: 20, Month: 12},
			end:       core.DayMonth{Day: 5, Month: 1},
			wantStart: time.Date(2025, 12, 20, 0, 0, 0, 0, ict),
			wantEnd:   time.Date(2026, 1, 5, 23, 59, 59, 0, ict),
		},
		{
			name:      "single day",
			start:     core.DayMonth{Day: 3, Month: 3},
			end:       core.DayMonth{Day: 3, Month: 3},
			wantStart: time.Date(2025, 3, 3, 0, 0, 0, 0, ict),
			wantEnd:   time.Date(2025, 3, 3, 23, 59, 59, 0, ict),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := CustomWindow(tt.start, tt.end, now)
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", w.Start, tt.wantStart)
			}
			if !w.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, want %v", w.End, tt.wantEnd)
			}
			if w.Period != PeriodCustom {
				t.Errorf("Period = %v, want custom", w.Period)
			}
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)

	open := Window{Start: start}
	closed := Window{Start: start, End: end}

	tests := []struct {
		name string
		w    Window
		ts   time.Time
		want bool
	}{
		{"at start", closed, start, true},
		{"before start", closed, start.Add(-time.Second), false},
		{"at end", closed, end, true},
		{"after end", closed, end.Add(time.Second), false},
		{"open far future", open, end.AddDate(5, 0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Contains(tt.ts); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}
