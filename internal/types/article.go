package types

import (
	"net/url"
	"strings"
	"time"
)

// Article is a single blog post discovered for the report.
type Article struct {
	// Site is the article's host with any leading "www." removed.
	Site string `json:"site" bson:"site"`

	// Title is the resolved headline. Never empty.
	Title string `json:"title" bson:"title"`

	// PublishedAt is the publication instant in UTC.
	PublishedAt time.Time `json:"published_at" bson:"published_at"`

	// URL is the absolute page URL.
	URL string `json:"url" bson:"url"`

	// Description is the shortened summary, possibly empty.
	Description string `json:"description" bson:"description"`
}

// ToFlatMap returns a flat map suitable for CSV export.
func (a Article) ToFlatMap() map[string]string {
	return map[string]string{
		"site":         a.Site,
		"title":        a.Title,
		"published_at": a.PublishedAt.Format(time.RFC3339),
		"url":          a.URL,
		"description":  a.Description,
	}
}

// SitemapEntry is one <url> record collected from a sitemap.
type SitemapEntry struct {
	Loc     string
	LastMod string // empty when the sitemap omits <lastmod>
	Sitemap string // document the entry was read from
}

// HasLastMod reports whether the sitemap declared a lastmod for the entry.
func (e SitemapEntry) HasLastMod() bool {
	return strings.TrimSpace(e.LastMod) != ""
}

// NormalizeDomain returns the host of rawURL without a leading "www.".
func NormalizeDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(u.Host, "www.", "")
}
