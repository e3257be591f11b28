package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/IshaanNene/blogdigest/internal/config"
	"github.com/IshaanNene/blogdigest/internal/fetcher"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>Blog</title>
  <item><title>One</title><link>%s/blog/one</link><pubDate>Thu, 15 Jan 2026 10:00:00 GMT</pubDate></item>
  <item><title>Two</title><link>%s/blog/two</link></item>
  <item><title>Shop</title><link>%s/shop/item</link><pubDate>Fri, 16 Jan 2026 10:00:00 GMT</pubDate></item>
</channel></rss>`

func newServer(t *testing.T, advertise bool) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/blog/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if advertise {
			w.Write([]byte(`<html><head><link rel="alternate" type="application/rss+xml" href="/blog/rss.xml"></head></html>`))
			return
		}
		w.Write([]byte(`<html><head></head></html>`))
	})
	rss := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(fmt.Sprintf(rssBody, srv.URL, srv.URL, srv.URL)))
	}
	mux.HandleFunc("/blog/rss.xml", rss)
	mux.HandleFunc("/feed", rss)
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newSource(t *testing.T) *Source {
	f := fetcher.NewHTTPFetcher(config.DefaultConfig(), testLogger)
	t.Cleanup(func() { f.Close() })
	return NewSource(f, testLogger)
}

func TestDiscoverAdvertisedFeed(t *testing.T) {
	srv := newServer(t, true)
	got := newSource(t).Discover(context.Background(), srv.URL+"/blog/")
	if len(got) != 1 || got[0] != srv.URL+"/blog/rss.xml" {
		t.Errorf("Discover = %v", got)
	}
}

func TestDiscoverFallsBackToFeedPath(t *testing.T) {
	srv := newServer(t, false)
	got := newSource(t).Discover(context.Background(), srv.URL+"/blog/")
	if len(got) != 1 || got[0] != srv.URL+"/feed" {
		t.Errorf("Discover = %v", got)
	}
}

func TestEntries(t *testing.T) {
	srv := newServer(t, true)
	got := newSource(t).Entries(context.Background(), srv.URL+"/blog/", "/blog")

	if len(got) != 2 {
		t.Fatalf("expected 2 entries under /blog, got %+v", got)
	}
	if got[0].Loc != srv.URL+"/blog/one" || got[0].LastMod != "2026-01-15T10:00:00Z" {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].Loc != srv.URL+"/blog/two" || got[1].HasLastMod() {
		t.Errorf("entry 1 = %+v", got[1])
	}
}

func TestEntriesUnreachableSite(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if got := newSource(t).Entries(context.Background(), srv.URL+"/blog/", ""); len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}
