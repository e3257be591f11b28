package types

import (
	"bytes"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// Response represents the result of fetching a URL.
type Response struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the decoded response body.
	Body []byte

	// ContentType is the MIME type of the response.
	ContentType string

	// Doc is a parsed goquery document (lazily loaded).
	Doc *goquery.Document
}

// NewResponse creates a Response from an http.Response and its already-read body.
func NewResponse(rawURL string, httpResp *http.Response, body []byte) *Response {
	return &Response{
		URL:         rawURL,
		StatusCode:  httpResp.StatusCode,
		Body:        body,
		ContentType: httpResp.Header.Get("Content-Type"),
	}
}

// Document returns a parsed goquery document, lazily initializing it.
func (r *Response) Document() (*goquery.Document, error) {
	if r.Doc != nil {
		return r.Doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}
	r.Doc = doc
	return doc, nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}
