package utils

import (
	"log"
	"math"
	"time"
)

const DefaultDateFormat = "2006-01-02"

// ParseDate parses a date string in the Nordnet export format (YYYY-MM-DD).
// Logs an error and returns zero time if parsing fails.
func ParseDate(dateStr string) time.Time {
	t, err := time.Parse(DefaultDateFormat, dateStr)
	if err != nil {
		log.Printf("Error parsing date '%s' with format '%s': %v. Returning zero time.", dateStr, DefaultDateFormat, err)
		return time.Time{}
	}
	return t
}

// DaysBetween returns the whole number of days from a to b, rounded.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// FormatDate renders a time in the Nordnet export format (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(DefaultDateFormat)
}
