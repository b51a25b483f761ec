package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobby/internal/aggregate"
	"github.com/amishk599/jobby/internal/config"
	"github.com/amishk599/jobby/internal/filter"
	"github.com/amishk599/jobby/internal/model"
	"github.com/amishk599/jobby/internal/notifier"
	"github.com/amishk599/jobby/internal/provider"
	"github.com/amishk599/jobby/internal/ratelimit"
	"github.com/amishk599/jobby/internal/runner"
	"github.com/amishk599/jobby/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "jobby",
	Short:        "Job listing aggregator",
	Long:         "Jobby collects job listings from employer career sites and reports which are new, which are still open and which are gone since the last run.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBBY_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBBY_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBBY_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	case "none":
		return notifier.Nop{}
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupStore opens the configured snapshot store. The returned close func is
// never nil.
func setupStore(cfg *config.Config, dryRun bool) (model.SnapshotStore, func() error, error) {
	nop := func() error { return nil }
	if dryRun {
		return store.NewNopStore(), nop, nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, nop, fmt.Errorf("creating output dir: %w", err)
	}

	switch cfg.Store.Type {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.StorePath())
		if err != nil {
			return nil, nop, err
		}
		return s, s.Close, nil
	default:
		return store.NewCSVStore(cfg.StorePath()), nop, nil
	}
}

// buildProviders configures every provider entry, wrapping each in the
// shared per-kind rate limiter when a minimum delay is set.
func buildProviders(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.Provider {
	providers := provider.Build(cfg.Providers, provider.Deps{Client: httpClient, Logger: logger})
	if cfg.RateLimit.MinDelay <= 0 {
		return providers
	}

	logger.Info("rate limiter configured", "min_delay", cfg.RateLimit.MinDelay.String())
	limiter := ratelimit.NewKindRateLimiter(cfg.RateLimit.MinDelay)
	for i, p := range providers {
		providers[i] = ratelimit.NewRateLimitedProvider(p, limiter)
	}
	return providers
}

// app is everything a run needs, built from the config.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	runner *runner.Runner
	close  func() error
}

// setupApp loads the config and wires a runner. logOut receives the logs.
func setupApp(logOut io.Writer, dryRun bool) (*app, error) {
	logger := setupLogger(logOut, debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return nil, err
	}

	logger.Info("config loaded",
		"name", cfg.Name,
		"providers", len(cfg.Providers),
		"store", cfg.Store.Type,
		"concurrency", cfg.Concurrency,
		"title_keywords", len(cfg.Filters.TitleKeywords),
		"locations", len(cfg.Filters.Locations),
	)

	snapshots, closeStore, err := setupStore(cfg, dryRun)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return nil, err
	}
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be saved")
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	var n model.Notifier = notifier.NewLogNotifier(logger)
	if !dryRun {
		n = setupNotifier(cfg, httpClient, logger)
	}

	providers := buildProviders(cfg, httpClient, logger)
	if len(providers) == 0 {
		logger.Warn("no providers configured, every stored listing will be reported GONE")
	}

	jobFilter := filter.NewTitleAndLocationFilter(
		cfg.Filters.TitleKeywords,
		cfg.Filters.TitleExcludeKeywords,
		cfg.Filters.Locations,
		cfg.Filters.ExcludeLocations,
	)
	var recordFilter model.RecordFilter
	if !jobFilter.Empty() {
		recordFilter = jobFilter
	}

	agg := aggregate.NewAggregator(cfg.Concurrency, recordFilter, logger)
	r := runner.NewRunner(providers, agg, snapshots, n, logger).WithRetention(cfg.Store.Retention)

	return &app{
		cfg:    cfg,
		logger: logger,
		runner: r,
		close:  closeStore,
	}, nil
}
