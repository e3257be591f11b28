// Package fetcher performs the HTTP GETs behind sitemap discovery, sitemap
// collection, feed parsing and article extraction.
package fetcher

import (
	"context"

	"github.com/IshaanNene/blogdigest/internal/types"
)

// Fetcher retrieves a single URL. Any non-2xx status, network error or
// timeout is reported as a *types.FetchError.
type Fetcher interface {
	// Fetch retrieves the content at rawURL.
	Fetch(ctx context.Context, rawURL string) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
