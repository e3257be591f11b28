// Package sitemap locates a site's sitemaps and flattens them into URL
// entries.
package sitemap

import (
	"context"
	"log/slog"
	"net/url"
)

// Discoverer resolves the sitemap URLs for a site.
type Discoverer struct {
	robots *RobotsManager
	logger *slog.Logger
}

// NewDiscoverer creates a Discoverer that reads robots.txt through rm.
func NewDiscoverer(rm *RobotsManager, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		robots: rm,
		logger: logger.With("component", "sitemap_discovery"),
	}
}

// Discover returns the sitemap URLs declared in the robots.txt of siteURL's
// origin, in file order. When there are none it returns the single default
// "<scheme>://<host>/sitemap.xml". It never fails.
func (d *Discoverer) Discover(ctx context.Context, siteURL string) []string {
	origin := Origin(siteURL)
	if origin == "" {
		return nil
	}

	sitemaps := d.robots.Sitemaps(ctx, origin)
	if len(sitemaps) == 0 {
		fallback := origin + "/sitemap.xml"
		d.logger.Debug("no sitemap directives, using default", "site", siteURL, "sitemap", fallback)
		return []string{fallback}
	}

	d.logger.Debug("sitemaps discovered", "site", siteURL, "count", len(sitemaps))
	return sitemaps
}

// Origin returns "<scheme>://<host>" for rawURL, or "" when rawURL has no host.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
