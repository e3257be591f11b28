package parser

import (
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/IshaanNene/blogdigest/internal/config"
)

// xpathRule builds a signal from an xpath site-profile rule. An invalid
// expression is logged once at build time and never matches.
func xpathRule(rule config.ParseRule, logger *slog.Logger) Signal[string] {
	expr, err := xpath.Compile(rule.Selector)
	if err != nil {
		logger.Warn("invalid xpath", "selector", rule.Selector, "error", err)
		return func(*Page) (string, bool) { return "", false }
	}

	return func(p *Page) (string, bool) {
		root := p.root()
		if root == nil {
			return "", false
		}
		for _, node := range htmlquery.QuerySelectorAll(root, expr) {
			var val string
			switch rule.Attribute {
			case "", "text":
				val = collapseWhitespace(htmlquery.InnerText(node))
			case "html", "innerHTML":
				val = htmlquery.OutputHTML(node, false)
			default:
				val = htmlquery.SelectAttr(node, rule.Attribute)
			}
			if val = strings.TrimSpace(val); val != "" {
				return val, true
			}
		}
		return "", false
	}
}
