// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing amounts typed by users and
// rendering them as grouped-thousands currency strings.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySuffix is appended to every rendered amount.
const CurrencySuffix = " đ"

// moneyPrinter groups digits with "," in clusters of three.
var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders a non-negative amount with thousands separators.
//
// Examples:
//
//	FormatMoney(0)       -> "0 đ"
//	FormatMoney(1234567) -> "1,234,567 đ"
func FormatMoney(amount int64) string {
	return moneyPrinter.Sprintf("%d", amount) + CurrencySuffix
}

// ParseAmount converts user input to an integer amount in the smallest
// currency unit.
//
// Dots, commas and whitespace are treated as grouping noise and removed; what
// remains must be one or more ASCII digits. Zero is accepted.
//
// Examples:
//
//	ParseAmount("50,000")   -> 50000, nil
//	ParseAmount(" 50.000 ") -> 50000, nil
//	ParseAmount("12a")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '.' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		// Only overflow can get here
		return 0, ErrInvalidAmount
	}
	return v, nil
}
