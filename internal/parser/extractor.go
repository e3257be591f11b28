package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IshaanNene/blogdigest/internal/config"
	"github.com/IshaanNene/blogdigest/internal/fetcher"
	"github.com/IshaanNene/blogdigest/internal/observability"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// chains holds the ordered signals for each article field.
type chains struct {
	title       []Signal[string]
	published   []Signal[time.Time]
	description []Signal[string]
}

var builtinChains = chains{
	title:       titleSignals,
	published:   publishedSignals,
	description: descriptionSignals,
}

// Extractor fetches article pages and resolves their title, publish date and
// description.
type Extractor struct {
	fetcher  fetcher.Fetcher
	profiles map[string]chains
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewExtractor creates an Extractor. Rules from profiles run ahead of the
// built-in signals for pages on the profile's host. metrics may be nil.
func NewExtractor(f fetcher.Fetcher, profiles []config.SiteProfile, metrics *observability.Metrics, logger *slog.Logger) *Extractor {
	e := &Extractor{
		fetcher:  f,
		profiles: make(map[string]chains, len(profiles)),
		metrics:  metrics,
		logger:   logger.With("component", "extractor"),
	}
	for _, p := range profiles {
		host := strings.ReplaceAll(strings.ToLower(p.Host), "www.", "")
		e.profiles[host] = e.profileChains(e.profiles[host], p.Rules)
	}
	return e
}

// profileChains prepends rule signals to the built-in chains. existing lets
// two profiles for the same host accumulate.
func (e *Extractor) profileChains(existing chains, rules []config.ParseRule) chains {
	var title, published, description []Signal[string]
	for _, r := range rules {
		var sig Signal[string]
		switch r.Type {
		case "xpath":
			sig = xpathRule(r, e.logger)
		default:
			sig = cssRule(r)
		}
		switch r.Field {
		case "title":
			title = append(title, sig)
		case "published":
			published = append(published, sig)
		case "description":
			description = append(description, sig)
		}
	}

	base := existing
	if base.title == nil {
		base = builtinChains
	}

	out := chains{
		title:       append(title, base.title...),
		description: append(description, base.description...),
	}
	for _, s := range published {
		out.published = append(out.published, parsed(s))
	}
	out.published = append(out.published, base.published...)
	return out
}

// Extract fetches rawURL and builds an Article from it. Every failure wraps
// types.ErrNoArticle: the page is simply not part of the digest.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (types.Article, error) {
	if e.metrics != nil {
		e.metrics.PagesFetched.Add(1)
	}
	resp, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return types.Article{}, fmt.Errorf("%w: %w", types.ErrNoArticle, err)
	}
	return e.ExtractResponse(rawURL, resp)
}

// ExtractResponse builds an Article from an already fetched page.
func (e *Extractor) ExtractResponse(rawURL string, resp *types.Response) (types.Article, error) {
	if len(resp.Body) == 0 {
		return types.Article{}, fmt.Errorf("%w: %w", types.ErrNoArticle, types.ErrEmptyResponse)
	}
	doc, err := resp.Document()
	if err != nil {
		return types.Article{}, fmt.Errorf("%w: %w", types.ErrNoArticle,
			&types.ParseError{URL: rawURL, Kind: "html", Err: err})
	}

	page := &Page{URL: rawURL, Doc: doc}
	c := e.chainsFor(rawURL)

	title, ok := First(page, c.title)
	if !ok {
		return types.Article{}, fmt.Errorf("%w: %w", types.ErrNoArticle, types.ErrMissingTitle)
	}
	published, ok := First(page, c.published)
	if !ok {
		return types.Article{}, fmt.Errorf("%w: %w", types.ErrNoArticle, types.ErrMissingDate)
	}
	description, _ := First(page, c.description)

	return types.Article{
		Site:        types.NormalizeDomain(rawURL),
		Title:       title,
		PublishedAt: published.UTC(),
		URL:         rawURL,
		Description: ShortenDescription(description),
	}, nil
}

func (e *Extractor) chainsFor(rawURL string) chains {
	if c, ok := e.profiles[strings.ToLower(types.NormalizeDomain(rawURL))]; ok {
		return c
	}
	return builtinChains
}
