package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/blogdigest/internal/config"
)

func TestApplyCLIOverrides(t *testing.T) {
	cmd := rootCmd()
	if err := cmd.ParseFlags([]string{
		"--concurrency", "4",
		"--timeout", "5s",
		"--locale", "EN",
		"--export-format", "csv",
		"-o", "digest.md",
	}); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	applyCLIOverrides(cmd, cfg)

	if cfg.Engine.Concurrency != 4 {
		t.Errorf("concurrency = %d", cfg.Engine.Concurrency)
	}
	if cfg.Engine.RequestTimeout != 5*time.Second {
		t.Errorf("timeout = %s", cfg.Engine.RequestTimeout)
	}
	if cfg.Report.Locale != "en" || cfg.Storage.Type != "csv" || cfg.Report.Output != "digest.md" {
		t.Errorf("unexpected config: %+v %+v", cfg.Report, cfg.Storage)
	}
	if cfg.Engine.UserAgent != config.DefaultUserAgent {
		t.Errorf("user agent changed to %q", cfg.Engine.UserAgent)
	}
}

func TestResolveSites(t *testing.T) {
	cfg := config.DefaultConfig()

	sites = nil
	if got := resolveSites(cfg, nil); len(got) != len(config.DefaultSites()) {
		t.Errorf("expected default sites, got %d", len(got))
	}

	sites = []string{"https://a.com/blog/", " "}
	defer func() { sites = nil }()
	got := resolveSites(cfg, []string{"https://b.com"})
	if strings.Join(got, ",") != "https://a.com/blog/,https://b.com" {
		t.Errorf("got %v", got)
	}
}

func TestRejectsMalformedMonth(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"--month", "2026-13", "--sites", "https://example.com"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an invalid month")
	}
}

func TestSitesCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sites"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 27 {
		t.Errorf("expected 27 sites, got %d", len(lines))
	}
}

func TestSitesFlagKeepsCommas(t *testing.T) {
	cmd := rootCmd()
	if err := cmd.ParseFlags([]string{
		"--sites", "https://a.com/search/?format=Article,Guide",
		"--sites", "https://b.com/blog/",
	}); err != nil {
		t.Fatal(err)
	}
	defer func() { sites = nil }()

	got := resolveSites(config.DefaultConfig(), nil)
	want := []string{"https://a.com/search/?format=Article,Guide", "https://b.com/blog/"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("sites = %q, want %q", got, want)
	}
}
