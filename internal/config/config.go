package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ArticleScraper/1.0)"

var defaultSites = [...]string{
	"https://adoric.com/blog/",
	"https://cxl.com/blog/category/cro-testing/",
	"https://epicgrowth.io/",
	"https://www.abtasty.com/experience-hub/search/?format=Article",
	"https://www.advance-metrics.com/de/category/conversion-optimization-de/",
	"https://vwo.com/blog/",
	"https://sitetuners.com/resources/case-studies/",
	"https://www.crazyegg.com/blog/",
	"https://www.invespcro.com/blog/",
	"https://monetate.com/resources/",
	"https://getuplift.co/blog/",
	"https://crometrics.com/articles/",
	"https://baymard.com/blog",
	"https://outgrow.co/blog/",
	"http://thisisdata.ru/",
	"https://medium.com/",
	"https://www.leadfeeder.com/blog/",
	"https://mindbox.ru/journal/cases",
	"https://econsultancy.com/articles/",
	"https://www.insiderintelligence.com/topics/industry/b2b",
	"https://neilpatel.com/blog/",
	"https://exp-platform.com/talks/",
	"https://ai.stanford.edu/~ronnyk/ronnyk-bib.html",
	"https://blog.hubspot.com/",
	"https://unbounce.com/resources/",
	"https://www.convert.com/blog/optimization/think-like-cro-pro-jon-crowder/",
	"https://growthrocks.com/blog/",
}

// DefaultSites returns a fresh copy of the built-in site list.
func DefaultSites() []string {
	out := make([]string, len(defaultSites))
	copy(out, defaultSites[:])
	return out
}

// Config is the root configuration for blogdigest.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"  yaml:"engine"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Sites   SitesConfig   `mapstructure:"sites"   yaml:"sites"`
	Report  ReportConfig  `mapstructure:"report"  yaml:"report"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// EngineConfig controls the digest run.
type EngineConfig struct {
	RequestTimeout   time.Duration `mapstructure:"request_timeout"    yaml:"request_timeout"`
	UserAgent        string        `mapstructure:"user_agent"         yaml:"user_agent"`
	Concurrency      int           `mapstructure:"concurrency"        yaml:"concurrency"`
	PolitenessDelay  time.Duration `mapstructure:"politeness_delay"   yaml:"politeness_delay"`
	RespectRobotsTxt bool          `mapstructure:"respect_robots_txt" yaml:"respect_robots_txt"`
	FeedFallback     bool          `mapstructure:"feed_fallback"      yaml:"feed_fallback"`
}

// FetcherConfig controls the HTTP client.
type FetcherConfig struct {
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// SitesConfig lists the sites to digest and any per-host extraction rules.
type SitesConfig struct {
	URLs     []string      `mapstructure:"urls"     yaml:"urls"`
	Profiles []SiteProfile `mapstructure:"profiles" yaml:"profiles"`
}

// SiteProfile adds extraction rules for pages on one host. Host is compared
// after "www." is stripped.
type SiteProfile struct {
	Host  string      `mapstructure:"host"  yaml:"host"`
	Rules []ParseRule `mapstructure:"rules" yaml:"rules"`
}

// ParseRule defines a single extraction rule.
type ParseRule struct {
	Field     string `mapstructure:"field"     yaml:"field"` // title, published, description
	Selector  string `mapstructure:"selector"  yaml:"selector"`
	Type      string `mapstructure:"type"      yaml:"type"` // css, xpath
	Attribute string `mapstructure:"attribute" yaml:"attribute"`
}

// ReportConfig controls the Markdown report.
type ReportConfig struct {
	Output      string `mapstructure:"output"       yaml:"output"`
	Locale      string `mapstructure:"locale"       yaml:"locale"`
	AlignTables bool   `mapstructure:"align_tables" yaml:"align_tables"`
}

// StorageConfig controls the optional article export.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus text endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			RequestTimeout: 30 * time.Second,
			UserAgent:      DefaultUserAgent,
			Concurrency:    1,
		},
		Fetcher: FetcherConfig{
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    10,
		},
		Sites: SitesConfig{
			URLs: DefaultSites(),
		},
		Report: ReportConfig{
			Locale: "ru",
		},
		Storage: StorageConfig{
			OutputPath:      "./output",
			MongoDatabase:   "blogdigest",
			MongoCollection: "articles",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
