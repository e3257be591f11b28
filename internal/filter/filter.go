// Package filter decides which collected sitemap entries are worth fetching.
package filter

import (
	"context"
	"net/url"
	"strings"

	"github.com/IshaanNene/blogdigest/internal/dates"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// Filter decides whether an entry should be fetched. reason explains a
// rejection and is empty when the entry is kept.
type Filter interface {
	ShouldKeep(ctx context.Context, entry types.SitemapEntry) (keep bool, reason string)
}

// Apply runs entry through filters in order and stops at the first rejection.
func Apply(ctx context.Context, entry types.SitemapEntry, filters ...Filter) (bool, string) {
	for _, f := range filters {
		if keep, reason := f.ShouldKeep(ctx, entry); !keep {
			return false, reason
		}
	}
	return true, ""
}

// Candidate is the month pre-filter. A parseable lastmod decides on its own;
// otherwise the URL path must contain one of the month's tokens.
type Candidate struct {
	month  dates.Month
	tokens []string
}

// NewCandidate creates a Candidate for month.
func NewCandidate(month dates.Month) *Candidate {
	return &Candidate{month: month, tokens: month.Tokens()}
}

// ShouldFetch reports whether entry passes the month pre-filter.
func (c *Candidate) ShouldFetch(entry types.SitemapEntry) bool {
	keep, _ := c.ShouldKeep(context.Background(), entry)
	return keep
}

// ShouldKeep implements Filter.
func (c *Candidate) ShouldKeep(_ context.Context, entry types.SitemapEntry) (bool, string) {
	if entry.HasLastMod() {
		if lastmod, ok := dates.ParseDateTime(entry.LastMod); ok {
			if c.month.Contains(lastmod) {
				return true, ""
			}
			return false, "lastmod outside month"
		}
	}

	path := entry.Loc
	if u, err := url.Parse(entry.Loc); err == nil {
		path = u.Path
	}
	for _, tok := range c.tokens {
		if strings.Contains(path, tok) {
			return true, ""
		}
	}
	return false, "no month token in path"
}

// Allower answers robots.txt questions.
type Allower interface {
	IsAllowed(ctx context.Context, rawURL string) bool
}

// Robots rejects entries disallowed by the site's robots.txt.
type Robots struct {
	allower Allower
}

// NewRobots creates a robots.txt filter.
func NewRobots(a Allower) *Robots {
	return &Robots{allower: a}
}

// ShouldKeep implements Filter.
func (r *Robots) ShouldKeep(ctx context.Context, entry types.SitemapEntry) (bool, string) {
	if r.allower.IsAllowed(ctx, entry.Loc) {
		return true, ""
	}
	return false, types.ErrBlocked.Error()
}
