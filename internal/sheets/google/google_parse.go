package google

import (
	"fmt"
	"strconv"
	"strings"

	"chitieu/internal/core"
	ports "chitieu/internal/sheets"
)

// toCells converts a record into sheet cells. The amount is sent as a number
// so spreadsheet formulas can sum the column.
func toCells(r core.Record) []any {
	row := ports.ToRow(r)
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	cells[ports.ColAmount] = r.Amount
	return cells
}

// toStrings renders cell values as returned by the API. Floats are printed
// without exponent so large amounts stay parseable as integers.
func toStrings(in []interface{}) ports.Row {
	out := make(ports.Row, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return out
}

// a1Range quotes the sheet name so names with spaces or symbols work.
func a1Range(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

func sheetNameOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return defaultSheetName
	}
	return strings.TrimSpace(name)
}

// unescapePrivateKey turns literal "\n" sequences from env files into newlines.
func unescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
