// Package storage exports digest articles to files or MongoDB alongside the
// Markdown report.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/blogdigest/internal/config"
	"github.com/IshaanNene/blogdigest/internal/types"
)

// Storage is the interface for all export backends.
type Storage interface {
	// Store persists a batch of articles.
	Store(ctx context.Context, articles []types.Article) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the backend selected by cfg.Type. It returns nil when no
// export is configured.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "json", "jsonl", "csv":
		s, err := NewFileStorage(cfg.Type, cfg.OutputPath, logger)
		if err != nil {
			return nil, &types.StorageError{Backend: cfg.Type, Err: err}
		}
		return s, nil
	case "mongodb":
		s, err := NewMongoStorage(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
		if err != nil {
			return nil, &types.StorageError{Backend: cfg.Type, Err: err}
		}
		return s, nil
	default:
		return nil, &types.StorageError{Backend: cfg.Type, Err: fmt.Errorf("unsupported storage type: %s", cfg.Type)}
	}
}
