package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/blogdigest/internal/config"
)

// cssRule builds a signal from a css site-profile rule. The first matching
// element with a non-empty value wins.
func cssRule(rule config.ParseRule) Signal[string] {
	return func(p *Page) (string, bool) {
		var val string
		p.Doc.Find(rule.Selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			switch rule.Attribute {
			case "", "text":
				val = selectionText(sel)
			case "html", "innerHTML":
				val, _ = sel.Html()
			default:
				val, _ = sel.Attr(rule.Attribute)
			}
			val = strings.TrimSpace(val)
			return val == ""
		})
		return val, val != ""
	}
}
