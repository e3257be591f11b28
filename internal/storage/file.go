package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/blogdigest/internal/types"
)

// csvColumns is the fixed CSV column order.
var csvColumns = []string{"site", "title", "published_at", "url", "description"}

// --- JSON Storage ---

// JSONStorage writes articles as a JSON array to a file on Close.
type JSONStorage struct {
	path     string
	articles []types.Article
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath string, logger *slog.Logger) (*JSONStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &JSONStorage{
		path:     outputPath,
		articles: make([]types.Article, 0),
		logger:   logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(_ context.Context, articles []types.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = append(s.articles, articles...)
	s.logger.Debug("articles buffered", "count", len(articles), "total", len(s.articles))
	return nil
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.articles); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	s.logger.Info("JSON written", "path", s.path, "articles", len(s.articles))
	return nil
}

// --- JSONL Storage ---

// JSONLStorage streams articles as newline-delimited JSON.
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage.
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(_ context.Context, articles []types.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range articles {
		if err := s.enc.Encode(a); err != nil {
			return fmt.Errorf("encode JSONL: %w", err)
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "articles", s.count)
	return s.file.Close()
}

// --- CSV Storage ---

// CSVStorage writes articles as CSV rows under a fixed header.
type CSVStorage struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVStorage creates a new CSV file storage and writes the header row.
func NewCSVStorage(outputPath string, logger *slog.Logger) (*CSVStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}

	return &CSVStorage{
		path:   outputPath,
		file:   f,
		writer: w,
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(_ context.Context, articles []types.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range articles {
		flat := a.ToFlatMap()
		row := make([]string, len(csvColumns))
		for i, col := range csvColumns {
			row[i] = flat[col]
		}
		if err := s.writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV written", "path", s.path, "articles", s.count)
	s.writer.Flush()
	return s.file.Close()
}

// NewFileStorage creates the file-based storage for storageType inside
// outputDir.
func NewFileStorage(storageType, outputDir string, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		return NewJSONStorage(filepath.Join(outputDir, "articles.json"), logger)
	case "jsonl":
		return NewJSONLStorage(filepath.Join(outputDir, "articles.jsonl"), logger)
	case "csv":
		return NewCSVStorage(filepath.Join(outputDir, "articles.csv"), logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
