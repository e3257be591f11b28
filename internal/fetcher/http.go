package fetcher

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/IshaanNene/blogdigest/internal/config"
	"github.com/IshaanNene/blogdigest/internal/observability"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// HTTPFetcher implements Fetcher with one shared http.Client, so every
// request in a run reuses the same connection pool.
type HTTPFetcher struct {
	client    *http.Client
	cfg       *config.FetcherConfig
	userAgent string
	limiter   *rate.Limiter
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithMetrics records fetch counters into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *HTTPFetcher) { f.metrics = m }
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger, opts ...Option) *HTTPFetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: max(cfg.Fetcher.MaxIdleConns/2, 1),
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // decompression (including brotli) happens in Fetch
	}

	maxRedirects := cfg.Fetcher.MaxRedirects
	followRedirects := cfg.Fetcher.FollowRedirects
	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !followRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("max redirects (%d) reached", maxRedirects)
		}
		return nil
	}

	f := &HTTPFetcher{
		client: &http.Client{
			Transport:     transport,
			Timeout:       cfg.Engine.RequestTimeout,
			CheckRedirect: redirectPolicy,
		},
		cfg:       &cfg.Fetcher,
		userAgent: cfg.Engine.UserAgent,
		logger:    logger.With("component", "http_fetcher"),
	}
	if f.userAgent == "" {
		f.userAgent = config.DefaultUserAgent
	}
	if cfg.Engine.PolitenessDelay > 0 {
		f.limiter = rate.NewLimiter(rate.Every(cfg.Engine.PolitenessDelay), 1)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch executes a GET and returns the decoded response. Only 2xx responses
// are returned without error.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*types.Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &types.FetchError{URL: rawURL, Err: err}
		}
	}

	if f.metrics != nil {
		f.metrics.FetchesTotal.Add(1)
	}
	resp, err := f.do(ctx, rawURL)
	if err != nil {
		if f.metrics != nil {
			f.metrics.FetchFailures.Add(1)
		}
		f.logger.Debug("fetch failed", "url", rawURL, "reason", err)
		return nil, err
	}
	if f.metrics != nil {
		f.metrics.BytesDownloaded.Add(int64(len(resp.Body)))
	}
	return resp, nil
}

func (f *HTTPFetcher) do(ctx context.Context, rawURL string) (*types.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("%w: %v", types.ErrInvalidURL, err)}
	}

	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, 4096))
		return nil, &types.FetchError{
			URL:        rawURL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", httpResp.StatusCode),
		}
	}

	reader, err := decompressReader(httpResp, httpResp.Body)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, StatusCode: httpResp.StatusCode, Err: err}
	}
	if f.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, f.cfg.MaxBodySize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, StatusCode: httpResp.StatusCode, Err: err}
	}

	contentType := httpResp.Header.Get("Content-Type")
	if isHTML(contentType) {
		body = decodeCharset(body, contentType)
	}

	resp := types.NewResponse(rawURL, httpResp, body)

	f.logger.Debug("fetch complete",
		"url", rawURL,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return resp, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// decodeCharset converts an HTML body to UTF-8 using the Content-Type charset
// or a <meta charset> declaration. Bodies that are already valid UTF-8 and
// carry no explicit charset are returned unchanged.
func decodeCharset(body []byte, contentType string) []byte {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return body
	}
	if !certain && name == "windows-1252" && utf8.Valid(body) {
		return body
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return body
	}
	return decoded
}
