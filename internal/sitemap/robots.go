package sitemap

import (
	"bufio"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"

	"github.com/IshaanNene/blogdigest/internal/fetcher"
)

// RobotsManager fetches robots.txt once per origin and answers sitemap and
// allow/disallow questions from the cached copy.
type RobotsManager struct {
	fetcher   fetcher.Fetcher
	userAgent string
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[string]*robotsData
	group singleflight.Group
}

// robotsData holds what was learned from one origin's robots.txt. A nil rules
// value means everything is allowed.
type robotsData struct {
	rules    *robotstxt.RobotsData
	sitemaps []string
}

// NewRobotsManager creates a RobotsManager. userAgent selects the rule group
// used by IsAllowed.
func NewRobotsManager(f fetcher.Fetcher, userAgent string, logger *slog.Logger) *RobotsManager {
	return &RobotsManager{
		fetcher:   f,
		userAgent: userAgent,
		logger:    logger.With("component", "robots"),
		cache:     make(map[string]*robotsData),
	}
}

// Sitemaps returns the Sitemap directives of origin's robots.txt in file
// order. origin is "<scheme>://<host>". Fetch or parse failures yield nil.
func (rm *RobotsManager) Sitemaps(ctx context.Context, origin string) []string {
	data := rm.get(ctx, origin)
	out := make([]string, len(data.sitemaps))
	copy(out, data.sitemaps)
	return out
}

// IsAllowed reports whether rawURL may be fetched under the configured
// User-Agent. A missing or unreadable robots.txt allows everything.
func (rm *RobotsManager) IsAllowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	data := rm.get(ctx, u.Scheme+"://"+u.Host)
	if data.rules == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.rules.TestAgent(path, rm.userAgent)
}

func (rm *RobotsManager) get(ctx context.Context, origin string) *robotsData {
	rm.mu.RLock()
	data, ok := rm.cache[origin]
	rm.mu.RUnlock()
	if ok {
		return data
	}

	v, _, _ := rm.group.Do(origin, func() (any, error) {
		d := rm.fetchRobotsTxt(ctx, origin)
		rm.mu.Lock()
		rm.cache[origin] = d
		rm.mu.Unlock()
		return d, nil
	})
	return v.(*robotsData)
}

// fetchRobotsTxt downloads and parses robots.txt.
func (rm *RobotsManager) fetchRobotsTxt(ctx context.Context, origin string) *robotsData {
	robotsURL := origin + "/robots.txt"

	resp, err := rm.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		rm.logger.Debug("robots.txt unavailable", "url", robotsURL, "reason", err)
		return &robotsData{}
	}

	rules, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
	if err != nil {
		// The grammar is strict about group order; sitemap lines are still
		// usable even when the rules are not.
		rm.logger.Debug("robots.txt parse error", "url", robotsURL, "reason", err)
		return &robotsData{sitemaps: scanSitemapLines(resp.Text())}
	}

	sitemaps := make([]string, 0, len(rules.Sitemaps))
	for _, s := range rules.Sitemaps {
		if s = strings.TrimSpace(s); s != "" {
			sitemaps = append(sitemaps, s)
		}
	}
	return &robotsData{rules: rules, sitemaps: sitemaps}
}

// scanSitemapLines collects "Sitemap:" directives line by line. The key is
// matched case-insensitively and the value is everything after the first colon.
func scanSitemapLines(content string) []string {
	var sitemaps []string
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			continue
		}
		value := strings.TrimSpace(line[len("sitemap:"):])
		if value != "" {
			sitemaps = append(sitemaps, value)
		}
	}
	return sitemaps
}
