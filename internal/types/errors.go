package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidMonth  = errors.New("month must be in YYYY-MM format")
	ErrNoArticle     = errors.New("page is not an article")
	ErrMissingTitle  = errors.New("no title found")
	ErrMissingDate   = errors.New("no publish date found")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrBlocked       = errors.New("blocked by robots.txt")
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps errors that occur while parsing a document.
type ParseError struct {
	URL  string
	Kind string // "xml", "html", "feed"
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the article processing pipeline.
type PipelineError struct {
	Stage   string
	Article *Article
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
