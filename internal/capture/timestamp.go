package capture

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// clientLayouts are tried before the loose parser. Zone-less values are UTC.
var clientLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// datePrefix gates the loose parser: without a date it would fill in
// today's date from the wall clock.
var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// NormalizeTimestamp converts a client supplied time into the stored form
// (UTC, millisecond precision). Empty or unparsable input yields fallback and
// ok == false; it never fails.
func NormalizeTimestamp(raw string, fallback time.Time) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return canonical(fallback), false
	}

	for _, layout := range clientLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return canonical(parsed), true
		}
	}

	if !datePrefix.MatchString(raw) {
		return canonical(fallback), false
	}
	if parsed, err := now.ParseInLocation(time.UTC, raw); err == nil {
		return canonical(parsed), true
	}
	return canonical(fallback), false
}

func canonical(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// FormatDuration renders the span between the first and last scan the way
// the dashboard shows it: "45s", "12m", "2h 5m", or "N/A" without scans.
func FormatDuration(first, last *time.Time) string {
	if first == nil || last == nil {
		return "N/A"
	}
	d := last.Sub(*first)
	if d < 0 {
		d = -d
	}

	switch {
	case d < time.Minute:
		return strconv.Itoa(int(d.Round(time.Second)/time.Second)) + "s"
	case d < time.Hour:
		return strconv.Itoa(int(d.Round(time.Minute)/time.Minute)) + "m"
	default:
		hours := int(d / time.Hour)
		minutes := int((d % time.Hour).Round(time.Minute) / time.Minute)
		return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	}
}
