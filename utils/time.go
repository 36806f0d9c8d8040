package utils

import "time"

// MonthStart truncates t to the first day of its month (UTC).
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonthStart returns the first day of the month after t.
func NextMonthStart(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// ParseDate parses the ISO date format used by booking start/end dates.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
