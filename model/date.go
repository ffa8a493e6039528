package model

import (
	"strconv"
	"strings"
	"time"
)

// ParseTaskDate parses the D/M/YYYY text used by the spreadsheet. Day and
// month may be unpadded. Calendar-invalid dates such as 31/2/2025 fail.
func ParseTaskDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, &DateParseError{Value: s, Reason: "empty"}
	}
	parts := strings.Split(v, "/")
	if len(parts) != 3 {
		return time.Time{}, &DateParseError{Value: s, Reason: "want D/M/YYYY"}
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, &DateParseError{Value: s, Reason: "non-numeric component " + strconv.Quote(p)}
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year < 1000 || year > 9999 {
		return time.Time{}, &DateParseError{Value: s, Reason: "year must have four digits"}
	}
	if month < 1 || month > 12 {
		return time.Time{}, &DateParseError{Value: s, Reason: "month out of range"}
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, &DateParseError{Value: s, Reason: "day out of range"}
	}
	return t, nil
}
