package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/blogdigest/internal/config"
	"github.com/IshaanNene/blogdigest/internal/dates"
	"github.com/IshaanNene/blogdigest/internal/engine"
	"github.com/IshaanNene/blogdigest/internal/observability"
	"github.com/IshaanNene/blogdigest/internal/report"
	"github.com/IshaanNene/blogdigest/internal/storage"
	"github.com/IshaanNene/blogdigest/internal/types"
)

var (
	cfgFile      string
	verbose      bool
	month        string
	sites        []string
	outputPath   string
	concurrent   int
	timeout      time.Duration
	userAgent    string
	locale       string
	exportFormat string
	exportPath   string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogdigest [site-url...]",
		Short: "Monthly digest of blog articles",
		Long: `blogdigest collects the articles each site published in one calendar month.

For every site it reads robots.txt for sitemap locations (falling back to
/sitemap.xml), walks sitemap indexes, keeps entries whose lastmod or URL
points at the month, and extracts title, publish date and description from
each page. The result is a Markdown report with one section per site.`,
		SilenceUsage: true,
		RunE:         runDigest,
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.Flags().StringVar(&month, "month", dates.CurrentMonth(time.Now()), "month to digest, YYYY-MM")
	cmd.Flags().StringArrayVar(&sites, "sites", nil, "site start URL, repeatable (default: built-in list)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the Markdown report to this file instead of stdout")
	cmd.Flags().IntVarP(&concurrent, "concurrency", "n", 0, "number of sites processed in parallel")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent header")
	cmd.Flags().StringVar(&locale, "locale", "", "report language: ru, en")
	cmd.Flags().StringVar(&exportFormat, "export-format", "", "also export articles: json, jsonl, csv, mongodb")
	cmd.Flags().StringVar(&exportPath, "export-path", "", "directory for file exports")

	cmd.AddCommand(versionCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(sitesCmd())

	return cmd
}

// runDigest executes the root command. Only a malformed month or broken
// configuration fails the run; unreachable sites and pages just shrink the
// report.
func runDigest(cmd *cobra.Command, args []string) error {
	m, err := dates.ParseMonth(month)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg)
	targets := resolveSites(cfg, args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		srv := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
		defer srv.Close()
	}

	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	eng := engine.New(cfg, metrics, logger)
	defer eng.Close()

	logger.Info("starting digest",
		"month", m.Token,
		"sites", len(targets),
		"concurrency", cfg.Engine.Concurrency,
		"locale", cfg.Report.Locale,
	)

	results := eng.Run(ctx, targets, m)

	sections := make([]report.Section, 0, len(results))
	var all []types.Article
	for _, r := range results {
		sections = append(sections, report.Section{Site: r.Name, Articles: r.Articles})
		all = append(all, r.Articles...)
	}

	renderer := report.NewRenderer(cfg.Report.Locale, cfg.Report.AlignTables)
	if err := renderer.Write(sections, m.Token, cfg.Report.Output); err != nil {
		return err
	}

	if store != nil {
		if err := store.Store(ctx, all); err != nil {
			store.Close()
			return fmt.Errorf("export %s: %w", store.Name(), err)
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("export %s: %w", store.Name(), err)
		}
	}

	metrics.LogSummary()
	return nil
}

// resolveSites returns the sites to digest: --sites and positional arguments
// when given, the configured list otherwise.
func resolveSites(cfg *config.Config, args []string) []string {
	var out []string
	for _, s := range append(append([]string(nil), sites...), args...) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return cfg.Sites.URLs
	}
	return out
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blogdigest %s\n", config.Version)
		},
	}
}

// configCmd prints the effective configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			out, err := config.Dump(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// sitesCmd lists the built-in site list.
func sitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the default sites",
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range config.DefaultSites() {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
		},
	}
}

// setupLogger creates a structured logger on stderr so stdout stays free for
// the report.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// applyCLIOverrides applies explicitly set flags on top of the loaded config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Report.Output = outputPath
	}
	if flags.Changed("concurrency") {
		cfg.Engine.Concurrency = concurrent
	}
	if flags.Changed("timeout") {
		cfg.Engine.RequestTimeout = timeout
	}
	if userAgent != "" {
		cfg.Engine.UserAgent = userAgent
	}
	if locale != "" {
		cfg.Report.Locale = strings.ToLower(locale)
	}
	if exportFormat != "" {
		cfg.Storage.Type = strings.ToLower(exportFormat)
	}
	if exportPath != "" {
		cfg.Storage.OutputPath = exportPath
	}
}
