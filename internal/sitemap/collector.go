package sitemap

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/IshaanNene/blogdigest/internal/fetcher"
	"github.com/IshaanNene/blogdigest/internal/observability"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// Collector expands sitemap indexes into a flat list of page entries.
type Collector struct {
	fetcher fetcher.Fetcher
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCollector creates a Collector. metrics may be nil.
func NewCollector(f fetcher.Fetcher, metrics *observability.Metrics, logger *slog.Logger) *Collector {
	return &Collector{
		fetcher: f,
		metrics: metrics,
		logger:  logger.With("component", "sitemap_collector"),
	}
}

// Collect walks sitemapURLs breadth first. Sitemap indexes enqueue their
// children; urlsets contribute entries whose path starts with pathPrefix
// (every entry when pathPrefix is empty). Each sitemap URL is fetched at most
// once, which also terminates cycles between indexes. Entries are returned in
// discovery order with repeated locations dropped. Sitemaps that fail to
// fetch or parse are skipped.
func (c *Collector) Collect(ctx context.Context, sitemapURLs []string, pathPrefix string) []types.SitemapEntry {
	queue := make([]string, 0, len(sitemapURLs))
	queue = append(queue, sitemapURLs...)
	visited := make(map[string]struct{})
	seenLocs := make(map[string]struct{})

	var entries []types.SitemapEntry
	for len(queue) > 0 {
		if ctx.Err() != nil {
			break
		}

		current := queue[0]
		queue = queue[1:]
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}

		doc, ok := c.load(ctx, current)
		if !ok {
			continue
		}

		switch doc.kind {
		case kindIndex:
			queue = append(queue, doc.sitemaps...)
		case kindURLSet:
			for _, u := range doc.urls {
				if !hasPathPrefix(u.Loc, pathPrefix) {
					continue
				}
				if _, dup := seenLocs[u.Loc]; dup {
					continue
				}
				seenLocs[u.Loc] = struct{}{}
				entries = append(entries, types.SitemapEntry{Loc: u.Loc, LastMod: u.LastMod, Sitemap: current})
			}
		default:
			c.logger.Debug("unrecognized sitemap root, skipping", "url", current)
		}
	}

	if c.metrics != nil {
		c.metrics.EntriesCollected.Add(int64(len(entries)))
	}
	return entries
}

func (c *Collector) load(ctx context.Context, sitemapURL string) (*document, bool) {
	resp, err := c.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		c.skipped(sitemapURL, err)
		return nil, false
	}

	doc, err := parseDocument(resp.Body)
	if err != nil {
		c.skipped(sitemapURL, &types.ParseError{URL: sitemapURL, Kind: "xml", Err: err})
		return nil, false
	}

	if c.metrics != nil {
		c.metrics.SitemapsFetched.Add(1)
	}
	return doc, true
}

func (c *Collector) skipped(sitemapURL string, reason error) {
	if c.metrics != nil {
		c.metrics.SitemapsSkipped.Add(1)
	}
	c.logger.Debug("sitemap skipped", "url", sitemapURL, "reason", reason)
}

func hasPathPrefix(loc, prefix string) bool {
	if prefix == "" {
		return true
	}
	u, err := url.Parse(loc)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, prefix)
}

// PathPrefix returns the path of siteURL without its trailing slashes, used
// to scope collected entries to the section of the site being digested.
func PathPrefix(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}
