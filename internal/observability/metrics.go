// Package observability holds the run counters and their Prometheus text
// endpoint.
package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters for a digest run. All fields are safe
// for concurrent use.
type Metrics struct {
	// Transport
	FetchesTotal    atomic.Int64
	FetchFailures   atomic.Int64
	BytesDownloaded atomic.Int64

	// Sitemaps
	SitemapsFetched  atomic.Int64
	SitemapsSkipped  atomic.Int64
	EntriesCollected atomic.Int64
	EntriesRejected  atomic.Int64

	// Articles
	PagesFetched     atomic.Int64
	ArticlesAccepted atomic.Int64
	ArticlesDropped  atomic.Int64

	SitesProcessed atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type metricLine struct {
	name  string
	help  string
	value int64
}

func (m *Metrics) lines() []metricLine {
	return []metricLine{
		{"blogdigest_fetches_total", "Total HTTP fetches attempted", m.FetchesTotal.Load()},
		{"blogdigest_fetch_failures_total", "Fetches that failed or returned non-2xx", m.FetchFailures.Load()},
		{"blogdigest_bytes_downloaded_total", "Total decoded bytes downloaded", m.BytesDownloaded.Load()},
		{"blogdigest_sitemaps_fetched_total", "Sitemap documents parsed", m.SitemapsFetched.Load()},
		{"blogdigest_sitemaps_skipped_total", "Sitemap documents skipped on fetch or parse failure", m.SitemapsSkipped.Load()},
		{"blogdigest_entries_collected_total", "Sitemap URL entries collected", m.EntriesCollected.Load()},
		{"blogdigest_entries_rejected_total", "Entries rejected before fetch", m.EntriesRejected.Load()},
		{"blogdigest_pages_fetched_total", "Candidate pages fetched for extraction", m.PagesFetched.Load()},
		{"blogdigest_articles_accepted_total", "Articles accepted into the report", m.ArticlesAccepted.Load()},
		{"blogdigest_articles_dropped_total", "Pages dropped after extraction", m.ArticlesDropped.Load()},
		{"blogdigest_sites_processed_total", "Sites fully processed", m.SitesProcessed.Load()},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, metric := range m.lines() {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server in the background and returns it
// so the caller can shut it down.
func (m *Metrics) StartServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return srv
}

// Snapshot returns all counters as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"fetches_total":     m.FetchesTotal.Load(),
		"fetch_failures":    m.FetchFailures.Load(),
		"bytes_downloaded":  m.BytesDownloaded.Load(),
		"sitemaps_fetched":  m.SitemapsFetched.Load(),
		"sitemaps_skipped":  m.SitemapsSkipped.Load(),
		"entries_collected": m.EntriesCollected.Load(),
		"entries_rejected":  m.EntriesRejected.Load(),
		"pages_fetched":     m.PagesFetched.Load(),
		"articles_accepted": m.ArticlesAccepted.Load(),
		"articles_dropped":  m.ArticlesDropped.Load(),
		"sites_processed":   m.SitesProcessed.Load(),
	}
}

// LogSummary writes the counters at info level.
func (m *Metrics) LogSummary() {
	args := make([]any, 0, 22)
	for _, l := range m.lines() {
		args = append(args, l.name, l.value)
	}
	m.logger.Info("run summary", args...)
}
