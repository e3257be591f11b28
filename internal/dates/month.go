// Package dates holds the month window and lenient date parsing used to
// decide whether a page belongs to the reporting month.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/IshaanNene/blogdigest/internal/types"
)

var monthTokenRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Month is a half-open UTC interval [Start, End) covering one calendar month.
type Month struct {
	Token string
	Start time.Time
	End   time.Time
}

// ParseMonth parses a "YYYY-MM" token into its UTC month window.
func ParseMonth(token string) (Month, error) {
	if !monthTokenRe.MatchString(token) {
		return Month{}, fmt.Errorf("%w: %q", types.ErrInvalidMonth, token)
	}
	start, err := time.ParseInLocation("2006-01", token, time.UTC)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q: %v", types.ErrInvalidMonth, token, err)
	}

	// Day 28 exists in every month; four days later is always next month.
	next := time.Date(start.Year(), start.Month(), 28, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 4)
	end := time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, time.UTC)

	return Month{Token: token, Start: start, End: end}, nil
}

// CurrentMonth returns the token of the month containing now, in UTC.
func CurrentMonth(now time.Time) string {
	return now.UTC().Format("2006-01")
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return !t.Before(m.Start) && t.Before(m.End)
}

// Tokens returns the URL path fragments that hint a page belongs to the month,
// e.g. "/2026/01", "/2026-01" and "/2026/1".
func (m Month) Tokens() []string {
	year := strconv.Itoa(m.Start.Year())
	num := int(m.Start.Month())
	candidates := []string{
		fmt.Sprintf("/%s/%02d", year, num),
		fmt.Sprintf("/%s-%02d", year, num),
		fmt.Sprintf("/%s/%d", year, num),
	}

	seen := make(map[string]struct{}, len(candidates))
	tokens := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		tokens = append(tokens, c)
	}
	return tokens
}

// MonthTokens parses token and returns its path fragments.
func MonthTokens(token string) ([]string, error) {
	m, err := ParseMonth(token)
	if err != nil {
		return nil, err
	}
	return m.Tokens(), nil
}

func (m Month) String() string {
	return m.Token
}
