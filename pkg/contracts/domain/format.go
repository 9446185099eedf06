package domain

import "strconv"

// FormatNumber renders a numeric key without trailing zeros ("19", "20.5")
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 {
	return &f
}
