package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. BLOGDIGEST_ENGINE_CONCURRENCY.
const EnvPrefix = "BLOGDIGEST"

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied by the caller on top of the result.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("blogdigest")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".blogdigest"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is okay if not explicitly specified
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Dump renders cfg as YAML.
func Dump(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setDefaults registers default values in viper so env vars bind to every key.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("engine.request_timeout", cfg.Engine.RequestTimeout)
	v.SetDefault("engine.user_agent", cfg.Engine.UserAgent)
	v.SetDefault("engine.concurrency", cfg.Engine.Concurrency)
	v.SetDefault("engine.politeness_delay", cfg.Engine.PolitenessDelay)
	v.SetDefault("engine.respect_robots_txt", cfg.Engine.RespectRobotsTxt)
	v.SetDefault("engine.feed_fallback", cfg.Engine.FeedFallback)

	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("sites.urls", cfg.Sites.URLs)

	v.SetDefault("report.output", cfg.Report.Output)
	v.SetDefault("report.locale", cfg.Report.Locale)
	v.SetDefault("report.align_tables", cfg.Report.AlignTables)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
