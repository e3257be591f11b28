package parser

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/blogdigest/internal/dates"
)

// metaContent returns the trimmed content of the first meta tag matching
// selector.
func metaContent(selector string) Signal[string] {
	return func(p *Page) (string, bool) {
		content, ok := p.Doc.Find(selector).First().Attr("content")
		if !ok {
			return "", false
		}
		content = strings.TrimSpace(content)
		return content, content != ""
	}
}

func firstH1(p *Page) (string, bool) {
	sel := p.Doc.Find("h1").First()
	if sel.Length() == 0 {
		return "", false
	}
	t := joinedText(sel, " ")
	return t, t != ""
}

func titleTag(p *Page) (string, bool) {
	sel := p.Doc.Find("title").First()
	if sel.Length() == 0 {
		return "", false
	}
	t := joinedText(sel, " ")
	return t, t != ""
}

// titleSignals is the built-in title chain.
var titleSignals = []Signal[string]{
	metaContent(`meta[property="og:title"]`),
	firstH1,
	titleTag,
}

// parsed adapts a string signal to a date signal; an unparseable value counts
// as a miss so the chain moves on.
func parsed(s Signal[string]) Signal[time.Time] {
	return func(p *Page) (time.Time, bool) {
		raw, ok := s(p)
		if !ok {
			return time.Time{}, false
		}
		return dates.ParseDateTime(raw)
	}
}

// timeElement reads the first <time>: its datetime attribute, else its text.
func timeElement(p *Page) (string, bool) {
	sel := p.Doc.Find("time").First()
	if sel.Length() == 0 {
		return "", false
	}
	if dt, ok := sel.Attr("datetime"); ok && dt != "" {
		return dt, true
	}
	t := joinedText(sel, "")
	return t, t != ""
}

// publishedSignals is the built-in publish date chain.
var publishedSignals = []Signal[time.Time]{
	parsed(metaContent(`meta[property="article:published_time"]`)),
	parsed(timeElement),
	parsed(jsonLDDatePublished),
	parsed(metaContent(`meta[itemprop="datePublished"]`)),
}

func firstParagraph(p *Page) (string, bool) {
	sel := p.Doc.Find("p").First()
	if sel.Length() == 0 {
		return "", false
	}
	t := collapseWhitespace(joinedText(sel, " "))
	return t, t != ""
}

// descriptionSignals is the built-in description chain, applied before
// shortening.
var descriptionSignals = []Signal[string]{
	metaContent(`meta[name="description"]`),
	firstParagraph,
}

// selectionText is used by CSS rules.
func selectionText(sel *goquery.Selection) string {
	return joinedText(sel, " ")
}
