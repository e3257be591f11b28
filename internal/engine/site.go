package engine

import (
	"context"
	"log/slog"
	"sort"

	"github.com/IshaanNene/blogdigest/internal/dates"
	"github.com/IshaanNene/blogdigest/internal/feed"
	"github.com/IshaanNene/blogdigest/internal/filter"
	"github.com/IshaanNene/blogdigest/internal/observability"
	"github.com/IshaanNene/blogdigest/internal/parser"
	"github.com/IshaanNene/blogdigest/internal/pipeline"
	"github.com/IshaanNene/blogdigest/internal/sitemap"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// SiteResult is the digest of one site.
type SiteResult struct {
	Name     string // domain without "www."
	URL      string
	Articles []types.Article
}

// SiteCollector runs discovery, collection, filtering and extraction for a
// single site.
type SiteCollector struct {
	discoverer *sitemap.Discoverer
	collector  *sitemap.Collector
	extractor  *parser.Extractor
	feeds      *feed.Source   // nil unless feed fallback is enabled
	robots     filter.Allower // nil unless robots.txt is respected
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// CollectSite returns the articles of siteURL published inside month, sorted
// by publish date. Failures of individual sitemaps or pages only shrink the
// result.
func (sc *SiteCollector) CollectSite(ctx context.Context, siteURL string, month dates.Month) []types.Article {
	logger := sc.logger.With("site", siteURL)
	prefix := sitemap.PathPrefix(siteURL)

	sitemaps := sc.discoverer.Discover(ctx, siteURL)
	entries := sc.collector.Collect(ctx, sitemaps, prefix)
	if len(entries) == 0 && sc.feeds != nil {
		entries = sc.feeds.Entries(ctx, siteURL, prefix)
		logger.Debug("using feed entries", "count", len(entries))
	}

	filters := []filter.Filter{filter.NewCandidate(month)}
	if sc.robots != nil {
		filters = append(filters, filter.NewRobots(sc.robots))
	}
	post := pipeline.Default(month, sc.logger)

	var articles []types.Article
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if keep, reason := filter.Apply(ctx, entry, filters...); !keep {
			sc.metrics.EntriesRejected.Add(1)
			logger.Debug("entry rejected", "url", entry.Loc, "reason", reason)
			continue
		}

		article, err := sc.extractor.Extract(ctx, entry.Loc)
		if err != nil {
			sc.metrics.ArticlesDropped.Add(1)
			logger.Debug("page skipped", "url", entry.Loc, "reason", err)
			continue
		}

		processed, err := post.Process(&article)
		if err != nil || processed == nil {
			sc.metrics.ArticlesDropped.Add(1)
			reason := "dropped by pipeline"
			if err != nil {
				reason = err.Error()
			}
			logger.Debug("article dropped", "url", entry.Loc, "reason", reason)
			continue
		}

		sc.metrics.ArticlesAccepted.Add(1)
		articles = append(articles, *processed)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.Before(articles[j].PublishedAt)
	})

	logger.Info("site collected",
		"sitemaps", len(sitemaps),
		"entries", len(entries),
		"articles", len(articles),
	)
	return articles
}
