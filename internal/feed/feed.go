// Package feed turns a site's RSS or Atom feed into sitemap-style entries for
// sites that publish no usable sitemap.
package feed

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/IshaanNene/blogdigest/internal/fetcher"
	"github.com/IshaanNene/blogdigest/internal/types"
)

var feedTypes = map[string]bool{
	"application/rss+xml":   true,
	"application/atom+xml":  true,
	"application/feed+json": true,
}

// Source reads feeds through the shared fetcher.
type Source struct {
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// NewSource creates a feed Source.
func NewSource(f fetcher.Fetcher, logger *slog.Logger) *Source {
	return &Source{
		fetcher: f,
		logger:  logger.With("component", "feed"),
	}
}

// Discover returns the feed URLs advertised by siteURL's
// <link rel="alternate"> tags, or "<origin>/feed" when there are none.
func (s *Source) Discover(ctx context.Context, siteURL string) []string {
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return nil
	}
	fallback := []string{base.Scheme + "://" + base.Host + "/feed"}

	resp, err := s.fetcher.Fetch(ctx, siteURL)
	if err != nil {
		return fallback
	}
	doc, err := resp.Document()
	if err != nil {
		return fallback
	}

	var feeds []string
	seen := make(map[string]bool)
	doc.Find(`link[rel="alternate"][href]`).Each(func(_ int, sel *goquery.Selection) {
		typ := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "")))
		if !feedTypes[typ] {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(sel.AttrOr("href", "")))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			feeds = append(feeds, abs)
		}
	})

	if len(feeds) == 0 {
		return fallback
	}
	return feeds
}

// Entries parses every feed of siteURL and returns one entry per item link
// whose path starts with pathPrefix. The item's published (or updated) date
// becomes the entry's lastmod.
func (s *Source) Entries(ctx context.Context, siteURL, pathPrefix string) []types.SitemapEntry {
	var entries []types.SitemapEntry
	seen := make(map[string]bool)

	for _, feedURL := range s.Discover(ctx, siteURL) {
		items, err := s.parse(ctx, feedURL)
		if err != nil {
			s.logger.Debug("feed skipped", "url", feedURL, "reason", err)
			continue
		}
		for _, item := range items {
			link := strings.TrimSpace(item.Link)
			if link == "" || seen[link] || !hasPathPrefix(link, pathPrefix) {
				continue
			}
			seen[link] = true
			entries = append(entries, types.SitemapEntry{
				Loc:     link,
				LastMod: itemDate(item),
				Sitemap: feedURL,
			})
		}
	}
	return entries
}

func (s *Source) parse(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	resp, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	f, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.ParseError{URL: feedURL, Kind: "feed", Err: err}
	}
	return f.Items, nil
}

func itemDate(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

func hasPathPrefix(link, prefix string) bool {
	if prefix == "" {
		return true
	}
	u, err := url.Parse(link)
	return err == nil && strings.HasPrefix(u.Path, prefix)
}
