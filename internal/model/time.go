package model

import "time"

// TimeLayout is the fixed-width UTC layout used for every stored timestamp.
// Fixed width keeps lexicographic and chronological order identical.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTime renders t in TimeLayout after converting it to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp previously produced by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
