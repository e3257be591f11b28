// Package parser turns a fetched article page into a types.Article by running
// ordered chains of extraction signals.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is a parsed HTML document shared by every signal of one extraction.
type Page struct {
	URL string
	Doc *goquery.Document
}

// root returns the document node for XPath queries.
func (p *Page) root() *html.Node {
	if len(p.Doc.Nodes) == 0 {
		return nil
	}
	return p.Doc.Nodes[0]
}

// Signal tries to produce one value from a page. ok is false when the
// signal has nothing to offer, and the next signal in the chain is tried.
type Signal[T any] func(p *Page) (value T, ok bool)

// First runs signals in order and returns the first hit.
func First[T any](p *Page, signals []Signal[T]) (T, bool) {
	for _, s := range signals {
		if v, ok := s(p); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// collapseWhitespace joins the whitespace-separated fields of s with single
// spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// joinedText concatenates the trimmed text nodes under sel with sep, skipping
// empty ones. "<h1>Hello <b>world</b></h1>" gives "Hello world" with sep " ".
func joinedText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
