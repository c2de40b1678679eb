package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDayMonth(t *testing.T) {
	cases := []struct {
		in  string
		out DayMonth
		ok  bool
	}{
		{"20/12", DayMonth{Day: 20, Month: 12}, true},
		{"5/1", DayMonth{Day: 5, Month: 1}, true},
		{" 05/01 ", DayMonth{Day: 5, Month: 1}, true},
		{"1/10", DayMonth{Day: 1, Month: 10}, true},
		{"20-12", DayMonth{}, false},
		{"20/12/2024", DayMonth{}, false},
		{"abc", DayMonth{}, false},
		{"", DayMonth{}, false},
		{"32/01", DayMonth{}, false},
		{"00/01", DayMonth{}, false},
		{"10/13", DayMonth{}, false},
		{"123/1", DayMonth{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDayMonth(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %+v, got %+v (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDayMonthIn(t *testing.T) {
	got := DayMonth{Day: 20, Month: 12}.In(2025, time.UTC)
	want := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if s := (DayMonth{Day: 5, Month: 1}).String(); s != "05/01" {
		t.Fatalf("String() = %q", s)
	}
	if !(DayMonth{}).IsZero() {
		t.Fatalf("zero value should report IsZero")
	}
}

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in  time.Time
		out string
	}{
		{time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC), "05/01"},
		{time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), "31/12"},
	}
	for _, tc := range cases {
		if got := FormatDate(tc.in); got != tc.out {
			t.Fatalf("FormatDate(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
