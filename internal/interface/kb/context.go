package kb

import "time"

// Season buckets the month: Dec-Feb winter, Mar-May spring, Jun-Aug
// summer, Sep-Nov autumn.
func Season(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

// Daypart buckets the hour: 5-11 morning, 12-17 afternoon, 18-22
// evening, 23-4 night.
func Daypart(t time.Time) string {
	h := t.Hour()
	switch {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 18:
		return "afternoon"
	case h >= 18 && h < 23:
		return "evening"
	default:
		return "night"
	}
}
