package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Engine.Concurrency < 1 {
		return fmt.Errorf("engine.concurrency must be >= 1, got %d", cfg.Engine.Concurrency)
	}
	if cfg.Engine.Concurrency > 64 {
		return fmt.Errorf("engine.concurrency must be <= 64, got %d", cfg.Engine.Concurrency)
	}
	if cfg.Engine.RequestTimeout <= 0 {
		return fmt.Errorf("engine.request_timeout must be > 0")
	}
	if cfg.Engine.PolitenessDelay < 0 {
		return fmt.Errorf("engine.politeness_delay must be >= 0")
	}
	if strings.TrimSpace(cfg.Engine.UserAgent) == "" {
		return fmt.Errorf("engine.user_agent must not be empty")
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	for i, p := range cfg.Sites.Profiles {
		if p.Host == "" {
			return fmt.Errorf("sites.profiles[%d].host must not be empty", i)
		}
		for j, r := range p.Rules {
			if err := validateRule(r); err != nil {
				return fmt.Errorf("sites.profiles[%d].rules[%d]: %w", i, j, err)
			}
		}
	}

	if cfg.Report.Locale != "ru" && cfg.Report.Locale != "en" {
		return fmt.Errorf("report.locale must be 'ru' or 'en', got %q", cfg.Report.Locale)
	}

	validStorageTypes := map[string]bool{
		"": true, "json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: json, jsonl, csv, mongodb)", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongodb" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

func validateRule(r ParseRule) error {
	switch r.Field {
	case "title", "published", "description":
	default:
		return fmt.Errorf("field must be title/published/description, got %q", r.Field)
	}
	if r.Type != "css" && r.Type != "xpath" {
		return fmt.Errorf("type must be 'css' or 'xpath', got %q", r.Type)
	}
	if strings.TrimSpace(r.Selector) == "" {
		return fmt.Errorf("selector must not be empty")
	}
	return nil
}

// ValidateURL checks if a URL string is usable as a site URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
