package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatValue renders a sheet cell. Undefined metrics become empty fields.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return formatInt(int64(v))
	case int64:
		return formatInt(v)
	case float64:
		return formatFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

// formatRow renders every cell of a sheet row
func formatRow(cells []any) []string {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = formatValue(c)
	}
	return row
}
