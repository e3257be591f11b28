package dates

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDateTime parses a loosely formatted date or timestamp. Values without a
// zone are read as UTC and every result is normalized to UTC. The boolean is
// false when raw is empty or cannot be understood; callers treat that as a
// missing date rather than an error.
func ParseDateTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
