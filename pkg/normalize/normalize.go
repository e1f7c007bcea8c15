// Package normalize provides pure helpers to bring the heterogeneous
// date and name values found in booking sheets into a canonical form.
package normalize

import (
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// sheetEpoch is the day-serial origin used by legacy spreadsheet files.
var sheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	isoDate,
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// Date converts a date string into ISO YYYY-MM-DD form. Unrecognized
// input is returned trimmed but otherwise unchanged, so callers compare
// unparsed values as literal strings.
func Date(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}
	return s
}

// SheetDate converts a raw spreadsheet cell value into ISO date form.
// Besides the textual formats accepted by Date it handles numeric
// day-serials counted from 1899-12-30.
func SheetDate(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	if strings.ContainsAny(text, "-/") {
		return Date(text)
	}
	if serial, err := strconv.ParseFloat(text, 64); err == nil {
		d := sheetEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
		return d.Format(isoDate)
	}
	return Date(text)
}

// Name normalizes a guest name for case and whitespace insensitive
// comparison. Empty input normalizes to the empty string; callers must
// treat empty-vs-empty as "not specified", not as a match.
func Name(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
