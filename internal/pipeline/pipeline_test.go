package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/IshaanNene/blogdigest/internal/dates"
	"github.com/IshaanNene/blogdigest/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func article(title string, published time.Time) *types.Article {
	return &types.Article{
		Site:        "example.com",
		Title:       title,
		PublishedAt: published,
		URL:         "https://example.com/post",
		Description: " Some text. ",
	}
}

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})

	result, err := p.Process(article("  Hello World  ", time.Now()))
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Title != "Hello World" {
		t.Errorf("expected trimmed title, got %q", result.Title)
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d", p.Len())
	}
}

func TestDefaultPipelineKeepsTextVerbatim(t *testing.T) {
	month, _ := dates.ParseMonth("2026-01")
	p := Default(month, testLogger)
	jan := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		title, description string
	}{
		{"Why A<B and C>D matters", "Compare <b> with <strong>."},
		{"<br>", ""},
		{"Tips &amp; Tricks", "Fish &amp;amp; chips."},
	}
	for _, tt := range tests {
		in := article(tt.title, jan)
		in.Description = tt.description
		out, err := p.Process(in)
		if err != nil || out == nil {
			t.Fatalf("article %q dropped: %v", tt.title, err)
		}
		if out.Title != tt.title {
			t.Errorf("title = %q, want %q", out.Title, tt.title)
		}
		if out.Description != tt.description {
			t.Errorf("description = %q, want %q", out.Description, tt.description)
		}
	}
}

func TestRequiredFieldsMiddleware(t *testing.T) {
	m := &RequiredFieldsMiddleware{}
	if r, _ := m.Process(article("T", time.Now())); r == nil {
		t.Error("complete article should pass")
	}
	if r, _ := m.Process(article("", time.Now())); r != nil {
		t.Error("article without title should be dropped")
	}
	if r, _ := m.Process(article("T", time.Time{})); r != nil {
		t.Error("article without date should be dropped")
	}
}

func TestDefaultPipelineMonthWindow(t *testing.T) {
	month, _ := dates.ParseMonth("2026-01")
	p := Default(month, testLogger)

	in := article("January post", time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	out, err := p.Process(in)
	if err != nil || out == nil {
		t.Fatalf("January article dropped: %v", err)
	}

	// lastmod said January, the page says December.
	out, err = p.Process(article("December post", time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)))
	if err != nil || out != nil {
		t.Errorf("December article should be dropped, got %+v, %v", out, err)
	}

	out, _ = p.Process(article("   ", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
	if out != nil {
		t.Error("blank title should be dropped")
	}
}

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Process(*types.Article) (*types.Article, error) {
	return nil, errors.New("boom")
}

func TestPipelineErrorWrapsStage(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})
	p.Use(failing{})

	_, err := p.Process(article("x", time.Now()))
	var pe *types.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pe.Stage != "failing" || pe.Article == nil {
		t.Errorf("pipeline error = %+v", pe)
	}
}
