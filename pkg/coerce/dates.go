package coerce

import (
	"strconv"
	"strings"
	"time"
)

// relativeUnits maps the unit word of a relative-time token to seconds.
var relativeUnits = map[string]int64{
	"minutes": 60,
	"hours":   60 * 60,
	"days":    60 * 60 * 24,
}

// SecondsAgo converts a token like "3 hours" to an offset in seconds.
// Unknown units, a missing value or an empty token give 0.
func SecondsAgo(token string) int64 {
	fields := strings.Fields(token)
	if len(fields) < 2 {
		return 0
	}
	factor, ok := relativeUnits[fields[1]]
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return n * factor
}

// Before returns t shifted back by the given number of seconds.
func Before(t time.Time, seconds int64) time.Time {
	return t.Add(-time.Duration(seconds) * time.Second)
}

// ParseDate tries each layout in turn and returns the first match in UTC.
// A nil loc means UTC. nil is returned when nothing matches.
func ParseDate(raw string, loc *time.Location, layouts ...string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// Time returns a pointer to t in UTC.
func Time(t time.Time) *time.Time {
	t = t.UTC()
	return &t
}
