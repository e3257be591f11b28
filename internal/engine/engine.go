// Package engine orchestrates a digest run: every site goes through sitemap
// discovery, collection, the candidate filter and article extraction.
package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/blogdigest/internal/config"
	"github.com/IshaanNene/blogdigest/internal/dates"
	"github.com/IshaanNene/blogdigest/internal/feed"
	"github.com/IshaanNene/blogdigest/internal/fetcher"
	"github.com/IshaanNene/blogdigest/internal/observability"
	"github.com/IshaanNene/blogdigest/internal/parser"
	"github.com/IshaanNene/blogdigest/internal/sitemap"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// Engine runs the digest over a list of sites.
type Engine struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	site    *SiteCollector
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates an Engine with an HTTP fetcher built from cfg.
func New(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	f := fetcher.NewHTTPFetcher(cfg, logger, fetcher.WithMetrics(metrics))
	return NewWithFetcher(cfg, f, metrics, logger)
}

// NewWithFetcher creates an Engine that performs every request through f.
func NewWithFetcher(cfg *config.Config, f fetcher.Fetcher, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}

	robots := sitemap.NewRobotsManager(f, cfg.Engine.UserAgent, logger)
	sc := &SiteCollector{
		discoverer: sitemap.NewDiscoverer(robots, logger),
		collector:  sitemap.NewCollector(f, metrics, logger),
		extractor:  parser.NewExtractor(f, cfg.Sites.Profiles, metrics, logger),
		metrics:    metrics,
		logger:     logger.With("component", "site_collector"),
	}
	if cfg.Engine.FeedFallback {
		sc.feeds = feed.NewSource(f, logger)
	}
	if cfg.Engine.RespectRobotsTxt {
		sc.robots = robots
	}

	return &Engine{
		cfg:     cfg,
		fetcher: f,
		site:    sc,
		metrics: metrics,
		logger:  logger.With("component", "engine"),
	}
}

// CollectSite digests a single site.
func (e *Engine) CollectSite(ctx context.Context, siteURL string, month dates.Month) []types.Article {
	return e.site.CollectSite(ctx, siteURL, month)
}

// Run digests sites for month and returns one result per site in input
// order. Sites run one after another unless engine.concurrency is above one.
// A failing site never affects its siblings.
func (e *Engine) Run(ctx context.Context, sites []string, month dates.Month) []SiteResult {
	start := time.Now()
	results := make([]SiteResult, len(sites))

	e.logger.Info("digest starting",
		"month", month.Token,
		"sites", len(sites),
		"concurrency", e.cfg.Engine.Concurrency,
	)

	if e.cfg.Engine.Concurrency <= 1 {
		for i, siteURL := range sites {
			results[i] = e.runSite(ctx, siteURL, month)
		}
	} else {
		// Workers never return errors, so the group's context is only
		// cancelled by the parent.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Engine.Concurrency)
		for i, siteURL := range sites {
			i, siteURL := i, siteURL
			g.Go(func() error {
				results[i] = e.runSite(gctx, siteURL, month)
				return nil
			})
		}
		_ = g.Wait()
	}

	e.logger.Info("digest finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return results
}

func (e *Engine) runSite(ctx context.Context, siteURL string, month dates.Month) SiteResult {
	result := SiteResult{
		Name: types.NormalizeDomain(siteURL),
		URL:  siteURL,
	}
	defer e.metrics.SitesProcessed.Add(1)

	if err := config.ValidateURL(siteURL); err != nil {
		e.logger.Warn("skipping site", "site", siteURL, "error", err)
		return result
	}

	result.Articles = e.site.CollectSite(ctx, siteURL, month)
	return result
}

// Metrics returns the run counters.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Close releases the fetcher's connections.
func (e *Engine) Close() error {
	return e.fetcher.Close()
}
