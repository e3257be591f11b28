// Package blogdigest provides a public SDK for embedding the monthly digest
// as a library.
//
// Example usage:
//
//	d := blogdigest.New(
//	    blogdigest.WithConcurrency(4),
//	    blogdigest.WithLocale("en"),
//	)
//
//	res, err := d.Run(ctx, "2026-01", "https://example.com/blog/")
//	if err != nil {
//	    return err
//	}
//	fmt.Print(res.Markdown())
package blogdigest

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/blogdigest/internal/config"
	"github.com/IshaanNene/blogdigest/internal/dates"
	"github.com/IshaanNene/blogdigest/internal/engine"
	"github.com/IshaanNene/blogdigest/internal/report"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// Article is a single digest entry.
type Article = types.Article

// Section groups the articles of one site.
type Section struct {
	Site     string
	URL      string
	Articles []Article
}

// Result is the outcome of a digest run.
type Result struct {
	Month    string
	Sections []Section
	Stats    map[string]int64

	locale string
	align  bool
}

// Markdown renders the result as the Markdown report.
func (r *Result) Markdown() string {
	sections := make([]report.Section, len(r.Sections))
	for i, s := range r.Sections {
		sections[i] = report.Section{Site: s.Site, Articles: s.Articles}
	}
	return report.NewRenderer(r.locale, r.align).Render(sections, r.Month)
}

// Articles returns every article of the run in section order.
func (r *Result) Articles() []Article {
	var out []Article
	for _, s := range r.Sections {
		out = append(out, s.Articles...)
	}
	return out
}

// Option configures a Digester.
type Option func(*config.Config)

// WithConcurrency sets how many sites are processed in parallel.
func WithConcurrency(n int) Option {
	return func(c *config.Config) { c.Engine.Concurrency = n }
}

// WithDelay sets the politeness delay between requests.
func WithDelay(d time.Duration) Option {
	return func(c *config.Config) { c.Engine.PolitenessDelay = d }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config.Config) { c.Engine.RequestTimeout = d }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *config.Config) { c.Engine.UserAgent = ua }
}

// WithRobotsRespect enables/disables robots.txt compliance for article pages.
func WithRobotsRespect(respect bool) Option {
	return func(c *config.Config) { c.Engine.RespectRobotsTxt = respect }
}

// WithFeedFallback enables reading RSS/Atom feeds for sites without sitemaps.
func WithFeedFallback(enabled bool) Option {
	return func(c *config.Config) { c.Engine.FeedFallback = enabled }
}

// WithLocale sets the report language ("ru" or "en").
func WithLocale(locale string) Option {
	return func(c *config.Config) { c.Report.Locale = locale }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}

// Digester runs digests with a fixed configuration.
type Digester struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Digester with the given options.
func New(opts ...Option) *Digester {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	level := slog.LevelWarn
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return &Digester{cfg: cfg, logger: logger}
}

// Run digests sites for month ("YYYY-MM"). With no sites the built-in list
// is used. Only a malformed month or configuration is an error.
func (d *Digester) Run(ctx context.Context, month string, sites ...string) (*Result, error) {
	m, err := dates.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(d.cfg); err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		sites = d.cfg.Sites.URLs
	}

	eng := engine.New(d.cfg, nil, d.logger)
	defer eng.Close()

	res := &Result{
		Month:  m.Token,
		locale: d.cfg.Report.Locale,
		align:  d.cfg.Report.AlignTables,
	}
	for _, sr := range eng.Run(ctx, sites, m) {
		res.Sections = append(res.Sections, Section{Site: sr.Name, URL: sr.URL, Articles: sr.Articles})
	}
	res.Stats = eng.Metrics().Snapshot()
	return res, nil
}
