package sheets

import (
	"math"
	"strconv"
	"strings"
	"time"

	"chitieu/internal/core"
)

// Column positions of a row.
const (
	ColTimestamp = iota
	ColSenderID
	ColPayment
	ColCategory
	ColAmount
	ColNote

	NumColumns
)

// Header is the optional first row of a fresh sheet.
var Header = Row{"Timestamp", "GroupID", "Payment", "Category", "Amount", "Note"}

// ToRow serializes a record for storage.
func ToRow(r core.Record) Row {
	return Row{
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.SenderID,
		r.Payment.Label(),
		r.Category,
		strconv.FormatInt(r.Amount, 10),
		r.Note,
	}
}

// ParseRow decodes one stored row. It reports false for rows that cannot
// contribute to totals: too short, header rows, bad timestamps, or amounts
// that are not non-negative numbers. A missing note column is allowed.
func ParseRow(row Row) (core.Record, bool) {
	if len(row) < ColAmount+1 {
		return core.Record{}, false
	}
	ts, ok := parseTimestamp(row[ColTimestamp])
	if !ok {
		return core.Record{}, false
	}
	amount, ok := parseStoredAmount(row[ColAmount])
	if !ok {
		return core.Record{}, false
	}
	sender := strings.TrimSpace(row[ColSenderID])
	if sender == "" {
		return core.Record{}, false
	}
	note := ""
	if len(row) > ColNote {
		note = row[ColNote]
	}
	return core.Record{
		Timestamp: ts,
		SenderID:  sender,
		Payment:   core.PaymentFromLabel(row[ColPayment]),
		Category:  strings.TrimSpace(row[ColCategory]),
		Amount:    amount,
		Note:      note,
	}, true
}

// ParseRows decodes rows in order, dropping malformed ones. The second value
// is the number of rows skipped.
func ParseRows(rows []Row) ([]core.Record, int) {
	out := make([]core.Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		r, ok := ParseRow(row)
		if !ok {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// RFC3339 parsing accepts fractional seconds, which covers ISO strings
	// written by other clients ("2025-01-05T03:04:05.123Z").
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseStoredAmount accepts integers, grouped integers ("120,000") and
// decimal renderings ("120000.0", "1.2e+06") as produced by spreadsheets.
func parseStoredAmount(s string) (int64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, v >= 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt64/2 {
		return 0, false
	}
	return int64(math.Round(f)), true
}
