package core

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "0 đ"},
		{7, "7 đ"},
		{999, "999 đ"},
		{1000, "1,000 đ"},
		{120000, "120,000 đ"},
		{1234567, "1,234,567 đ"},
		{1000000000, "1,000,000,000 đ"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.in); got != tc.out {
			t.Fatalf("FormatMoney(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestFormatMoneyRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, 12, 123, 1234, 12345, 123456, 1234567, 98765432109} {
		s := FormatMoney(n)
		if !strings.HasSuffix(s, CurrencySuffix) {
			t.Fatalf("%d: missing suffix in %q", n, s)
		}
		digits := strings.TrimSuffix(s, CurrencySuffix)
		if strings.HasPrefix(digits, ",") {
			t.Fatalf("%d: leading separator in %q", n, s)
		}
		groups := strings.Split(digits, ",")
		for i, g := range groups {
			if i > 0 && len(g) != 3 {
				t.Fatalf("%d: group %q in %q is not three digits", n, g, s)
			}
			if i == 0 && (len(g) == 0 || len(g) > 3) {
				t.Fatalf("%d: bad leading group %q in %q", n, g, s)
			}
		}
		back, err := strconv.ParseInt(strings.Join(groups, ""), 10, 64)
		if err != nil || back != n {
			t.Fatalf("%d: round trip gave %d (err=%v)", n, back, err)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"50000", 50000, true},
		{"50,000", 50000, true},
		{"50.000", 50000, true},
		{"  50000 ", 50000, true},
		{"1 200 000", 1200000, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"12a", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"١٢", 0, false}, // non-ASCII digits
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}
