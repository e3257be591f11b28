// Package pipeline post-processes extracted articles before they are
// accepted into the digest.
package pipeline

import (
	"log/slog"
	"strings"

	"github.com/IshaanNene/blogdigest/internal/dates"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// Middleware processes an article and returns the (possibly modified) article.
// Return nil to drop the article from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms an article. Return nil to drop it.
	Process(a *types.Article) (*types.Article, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Default returns the standard article pipeline for month: trim the text
// fields, require a title, and keep only articles published inside month.
// Extracted text is already entity-decoded and is otherwise kept verbatim.
func Default(month dates.Month, logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(&TrimMiddleware{})
	p.Use(&RequiredFieldsMiddleware{})
	p.Use(&MonthWindowMiddleware{Month: month})
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the article through all middleware in order. A nil result
// with a nil error means the article was dropped.
func (p *Pipeline) Process(a *types.Article) (*types.Article, error) {
	current := a

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:   mw.Name(),
				Article: current,
				Err:     err,
			}
		}
		if result == nil {
			p.logger.Debug("article dropped", "stage", mw.Name(), "url", a.URL)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// --- Built-in Middleware ---

// TrimMiddleware trims whitespace from the text fields.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	return a, nil
}

// RequiredFieldsMiddleware drops articles that lost their title or date.
type RequiredFieldsMiddleware struct{}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(a *types.Article) (*types.Article, error) {
	if a.Title == "" || a.PublishedAt.IsZero() {
		return nil, nil
	}
	return a, nil
}

// MonthWindowMiddleware drops articles whose own publish date is outside the
// month. Sitemap lastmod only pre-filters; this is the authoritative check.
type MonthWindowMiddleware struct {
	Month dates.Month
}

func (m *MonthWindowMiddleware) Name() string { return "month_window" }

func (m *MonthWindowMiddleware) Process(a *types.Article) (*types.Article, error) {
	if !m.Month.Contains(a.PublishedAt) {
		return nil, nil
	}
	return a, nil
}
