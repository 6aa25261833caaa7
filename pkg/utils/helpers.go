package utils

import (
	"strconv"
	"strings"
	"time"
)

// missingMarkers are cell contents treated as "no value" during ingestion.
var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
}

// ParseDuration safely parses duration strings like "5m"
func ParseDuration(d string) time.Duration {
	if d == "" {
		return 5 * time.Minute
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return 5 * time.Minute
	}
	return duration
}

// IsMissing reports whether a raw cell should be treated as a missing value.
func IsMissing(s string) bool {
	return missingMarkers[strings.ToLower(strings.TrimSpace(s))]
}

// ParseNumeric attempts to interpret a raw cell as a float64.
func ParseNumeric(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatFloat renders a float the way report cells expect: shortest round-trip form.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
