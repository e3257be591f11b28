package parser

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/blogdigest/internal/config"
	"github.com/IshaanNene/blogdigest/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const articleHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Page Title | Blog</title>
    <meta name="description" content="  First sentence. Second sentence! Third sentence?  ">
    <meta property="og:title" content=" OG Title ">
    <meta property="article:published_time" content="2026-01-15T10:00:00Z">
</head>
<body>
    <h1>Heading <em>Title</em></h1>
    <time datetime="2025-06-01">June 1</time>
    <p>Body   paragraph.</p>
</body>
</html>`

func makeResp(url, body string) *types.Response {
	return &types.Response{
		URL:         url,
		StatusCode:  200,
		Body:        []byte(body),
		ContentType: "text/html",
	}
}

func page(t *testing.T, body string) *Page {
	t.Helper()
	resp := makeResp("https://example.com/post", body)
	doc, err := resp.Document()
	if err != nil {
		t.Fatal(err)
	}
	return &Page{URL: resp.URL, Doc: doc}
}

func newExtractor(profiles []config.SiteProfile) *Extractor {
	return NewExtractor(nil, profiles, nil, testLogger)
}

// --- ShortenDescription ---

func TestShortenDescription(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"First. Second! Third? Fourth.", "First. Second!"},
		{"One sentence only.", "One sentence only."},
		{"One sentence. And a tail", "One sentence. And a tail"},
		{"no terminators at all", "no terminators at all"},
		{"  lots \n of\t  space  ", "lots of space"},
		{"", ""},
		{"   ", ""},
		{"Wait... what?", "Wait. ."},
		{"Ends here. ", "Ends here."},
		{"Привет, мир! Как дела? Хорошо.", "Привет, мир! Как дела?"},
	}
	for _, tt := range tests {
		if got := ShortenDescription(tt.in); got != tt.want {
			t.Errorf("ShortenDescription(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Signal chains ---

func TestTitleChain(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"og wins", articleHTML, "OG Title"},
		{"h1 next", `<html><head><title>T</title></head><body><h1> Big <b>News</b> </h1></body></html>`, "Big News"},
		{"empty og falls through", `<html><head><meta property="og:title" content="  "><title>T</title></head><body><h1>H</h1></body></html>`, "H"},
		{"title last", `<html><head><title> Only   Title </title></head><body></body></html>`, "Only Title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := First(page(t, tt.body), titleSignals)
			if !ok || got != tt.want {
				t.Errorf("title = %q (%v), want %q", got, ok, tt.want)
			}
		})
	}

	if _, ok := First(page(t, `<html><body><p>x</p></body></html>`), titleSignals); ok {
		t.Error("expected no title")
	}
}

func TestPublishedChain(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"meta wins over time", articleHTML, "2026-01-15T10:00:00Z"},
		{"time datetime", `<html><body><time datetime="2026-01-20T08:30:00+02:00">Jan 20</time></body></html>`, "2026-01-20T06:30:00Z"},
		{"time text", `<html><body><time> 2026-01-21 </time></body></html>`, "2026-01-21T00:00:00Z"},
		{"unparseable meta falls through", `<html><head><meta property="article:published_time" content="yesterday"></head><body><time datetime="2026-01-22"></time></body></html>`, "2026-01-22T00:00:00Z"},
		{"json-ld", `<html><head><script type="application/ld+json">{"@context":"https://schema.org","@graph":[{"@type":"WebPage"},{"@type":"BlogPosting","datePublished":"2026-01-23T12:00:00Z"}]}</script></head><body></body></html>`, "2026-01-23T12:00:00Z"},
		{"itemprop", `<html><head><meta itemprop="datePublished" content="2026-01-24"></head><body></body></html>`, "2026-01-24T00:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := First(page(t, tt.body), publishedSignals)
			if !ok {
				t.Fatal("no date resolved")
			}
			if s := got.UTC().Format(time.RFC3339); s != tt.want {
				t.Errorf("published = %s, want %s", s, tt.want)
			}
		})
	}

	if _, ok := First(page(t, `<html><body><time>sometime</time></body></html>`), publishedSignals); ok {
		t.Error("unparseable <time> text should not resolve")
	}
}

func TestDescriptionChain(t *testing.T) {
	got, _ := First(page(t, articleHTML), descriptionSignals)
	if got != "First sentence. Second sentence! Third sentence?" {
		t.Errorf("description = %q", got)
	}

	got, _ = First(page(t, `<html><body><p>
		Para  <a href="#">with link</a> text.
	</p><p>second</p></body></html>`), descriptionSignals)
	if got != "Para with link text." {
		t.Errorf("paragraph description = %q", got)
	}

	if _, ok := First(page(t, `<html><body><div>none</div></body></html>`), descriptionSignals); ok {
		t.Error("expected no description")
	}
}

// --- ExtractResponse ---

func TestExtractResponse(t *testing.T) {
	e := newExtractor(nil)
	a, err := e.ExtractResponse("https://www.example.com/blog/post", makeResp("https://www.example.com/blog/post", articleHTML))
	if err != nil {
		t.Fatalf("ExtractResponse: %v", err)
	}
	if a.Site != "example.com" {
		t.Errorf("site = %q", a.Site)
	}
	if a.Title != "OG Title" {
		t.Errorf("title = %q", a.Title)
	}
	if !a.PublishedAt.Equal(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)) || a.PublishedAt.Location() != time.UTC {
		t.Errorf("published = %v", a.PublishedAt)
	}
	if a.Description != "First sentence. Second sentence!" {
		t.Errorf("description = %q", a.Description)
	}
	if a.URL != "https://www.example.com/blog/post" {
		t.Errorf("url = %q", a.URL)
	}
}

func TestExtractResponseMissingFields(t *testing.T) {
	e := newExtractor(nil)

	_, err := e.ExtractResponse("https://a.test/x", makeResp("https://a.test/x", `<html><body><time datetime="2026-01-02"></time></body></html>`))
	if !errors.Is(err, types.ErrNoArticle) || !errors.Is(err, types.ErrMissingTitle) {
		t.Errorf("missing title: err = %v", err)
	}

	_, err = e.ExtractResponse("https://a.test/x", makeResp("https://a.test/x", `<html><body><h1>Title</h1></body></html>`))
	if !errors.Is(err, types.ErrNoArticle) || !errors.Is(err, types.ErrMissingDate) {
		t.Errorf("missing date: err = %v", err)
	}

	_, err = e.ExtractResponse("https://a.test/x", makeResp("https://a.test/x", ""))
	if !errors.Is(err, types.ErrNoArticle) {
		t.Errorf("empty body: err = %v", err)
	}
}

func TestSiteProfileRules(t *testing.T) {
	const body = `<html><head><title>Generic</title></head><body>
		<div class="post-title">Profile Title</div>
		<span class="pub" data-ts="2026-01-09T09:00:00Z">9 Jan</span>
		<div id="lede"><span>Lede text. More.</span> Extra.</div>
		<time datetime="2025-01-01"></time>
	</body></html>`

	profiles := []config.SiteProfile{{
		Host: "www.custom.test",
		Rules: []config.ParseRule{
			{Field: "title", Type: "css", Selector: ".post-title"},
			{Field: "published", Type: "xpath", Selector: `//span[@class="pub"]`, Attribute: "data-ts"},
			{Field: "description", Type: "xpath", Selector: `//div[@id="lede"]`},
		},
	}}
	e := newExtractor(profiles)

	a, err := e.ExtractResponse("https://custom.test/p", makeResp("https://custom.test/p", body))
	if err != nil {
		t.Fatal(err)
	}
	if a.Title != "Profile Title" {
		t.Errorf("title = %q", a.Title)
	}
	if !a.PublishedAt.Equal(time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("published = %v", a.PublishedAt)
	}
	if a.Description != "Lede text. More." {
		t.Errorf("description = %q", a.Description)
	}

	// Other hosts keep the built-in chain.
	a, err = e.ExtractResponse("https://other.test/p", makeResp("https://other.test/p", body))
	if err != nil {
		t.Fatal(err)
	}
	if a.Title != "Generic" || a.PublishedAt.Year() != 2025 {
		t.Errorf("other host article = %+v", a)
	}
}

func TestSiteProfileFallsBackToBuiltins(t *testing.T) {
	profiles := []config.SiteProfile{{
		Host: "custom.test",
		Rules: []config.ParseRule{
			{Field: "title", Type: "css", Selector: ".does-not-exist"},
			{Field: "published", Type: "xpath", Selector: "//*[", Attribute: "x"}, // invalid, never matches
		},
	}}
	e := newExtractor(profiles)

	a, err := e.ExtractResponse("https://custom.test/p", makeResp("https://custom.test/p", articleHTML))
	if err != nil {
		t.Fatal(err)
	}
	if a.Title != "OG Title" || a.PublishedAt.Day() != 15 {
		t.Errorf("article = %+v", a)
	}
}

// --- Extract ---

type stubFetcher struct {
	body string
	err  error
	hits int
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (*types.Response, error) {
	s.hits++
	if s.err != nil {
		return nil, s.err
	}
	return makeResp(rawURL, s.body), nil
}

func (s *stubFetcher) Close() error { return nil }

func TestExtractFetches(t *testing.T) {
	f := &stubFetcher{body: articleHTML}
	e := NewExtractor(f, nil, nil, testLogger)

	a, err := e.Extract(context.Background(), "https://example.com/post")
	if err != nil {
		t.Fatal(err)
	}
	if f.hits != 1 || a.Title != "OG Title" {
		t.Errorf("hits=%d article=%+v", f.hits, a)
	}
}

func TestExtractFetchFailureIsAbsence(t *testing.T) {
	f := &stubFetcher{err: &types.FetchError{URL: "https://example.com/post", StatusCode: 500, Err: errors.New("HTTP 500")}}
	e := NewExtractor(f, nil, nil, testLogger)

	_, err := e.Extract(context.Background(), "https://example.com/post")
	if !errors.Is(err, types.ErrNoArticle) {
		t.Fatalf("err = %v, want ErrNoArticle", err)
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 500 {
		t.Errorf("fetch error not preserved: %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error text = %q", err)
	}
}
