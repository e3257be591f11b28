package parser

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonLDDatePublished returns the first datePublished found in the page's
// application/ld+json blocks, searching nested objects, arrays and @graph.
func jsonLDDatePublished(p *Page) (string, bool) {
	var found string
	p.Doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return true
		}
		if v, ok := findKey(data, "datePublished"); ok {
			found = v
			return false
		}
		return true
	})
	return found, found != ""
}

// findKey does a depth-first search for a non-empty string value under key.
func findKey(node any, key string) (string, bool) {
	switch v := node.(type) {
	case map[string]any:
		if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
		// Sorted so repeated runs pick the same value.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := findKey(v[k], key); ok {
				return s, true
			}
		}
	case []any:
		for _, child := range v {
			if s, ok := findKey(child, key); ok {
				return s, true
			}
		}
	}
	return "", false
}
