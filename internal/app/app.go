package app

import (
	"context"
	"fmt"
	"log/slog"

	"secalerts/internal/config"
	"secalerts/internal/digest"
	"secalerts/internal/domain"
	"secalerts/internal/feeds"
	infrafeeds "secalerts/internal/infrastructure/feeds"
	"secalerts/internal/infrastructure/ntfy"
	"secalerts/internal/infrastructure/scheduler"
	"secalerts/internal/infrastructure/storage"
	"secalerts/internal/usecase"
)

// RunOptions carries CLI overrides into one invocation.
type RunOptions struct {
	Once         bool
	DryRun       bool
	ModeOverride string
}

// Application wires config to the cycle orchestrator and its adapters.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, logger *slog.Logger) *Application {
	return &Application{cfg: cfg, logger: logger}
}

// Run opens the seen store, assembles the pipeline, and executes cycles
// either once or on the configured interval. A store that cannot be
// opened is fatal: without it at-most-once delivery cannot be guaranteed.
func (a *Application) Run(ctx context.Context, opts RunOptions) error {
	mode := usecase.Mode(a.cfg.App.Mode)
	if opts.ModeOverride != "" {
		mode = usecase.Mode(opts.ModeOverride)
	}
	if mode != usecase.ModeInstant && mode != usecase.ModeDigest {
		return fmt.Errorf("unknown mode %q", mode)
	}

	store, err := storage.Open(a.cfg.App.DBPath)
	if err != nil {
		return fmt.Errorf("open seen store: %w", err)
	}
	defer store.Close()

	if count, err := store.Count(ctx); err == nil {
		a.logger.Info("seen store ready", "path", a.cfg.App.DBPath, "seen", count)
	}

	dryRun := opts.DryRun
	if a.cfg.Ntfy.Topic == "" && !dryRun {
		a.logger.Warn("no ntfy topic configured, forcing dry run")
		dryRun = true
	}

	cycle := usecase.NewCycle(usecase.CycleDeps{
		Source:   a.buildSource(),
		Store:    store,
		Notifier: ntfy.NewNotifier(a.cfg.Ntfy.BaseURL, a.cfg.Ntfy.Topic, a.cfg.Ntfy.Headers),
		Digest:   digest.NewFileWriter(a.cfg.App.DigestOutput),
		Policy:   a.cfg.Filters.Policy(),
		Mode:     mode,
		DryRun:   dryRun,
		Priority: a.cfg.Ntfy.Priority,
		Logger:   a.logger.With("component", "cycle"),
	})

	if opts.Once {
		_, err := cycle.Run(ctx)
		return err
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.App.CycleInterval())
	sched := usecase.NewScheduler(driver, cycle)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// SeenCount reports how many identities the store holds.
func (a *Application) SeenCount(ctx context.Context) (int, error) {
	store, err := storage.Open(a.cfg.App.DBPath)
	if err != nil {
		return 0, fmt.Errorf("open seen store: %w", err)
	}
	defer store.Close()
	return store.Count(ctx)
}

func (a *Application) buildSource() *feeds.MultiSource {
	registry := feeds.NewRegistry()
	registry.Register(infrafeeds.NewRSSFetcher(nil))
	registry.Register(infrafeeds.NewKEVFetcher(nil))
	registry.Register(infrafeeds.NewNVDFetcher(nil))

	var endpoints []feeds.Endpoint
	for _, rss := range a.cfg.Feeds.RSS {
		category := domain.Category(rss.Category)
		if category != domain.CategoryCVE {
			category = domain.CategoryNews
		}
		endpoints = append(endpoints, feeds.Endpoint{
			Kind: "rss",
			Request: feeds.Request{
				Name:     rss.Name,
				URL:      rss.URL,
				Category: category,
			},
		})
	}

	if a.cfg.Feeds.KEV.IsEnabled() {
		endpoints = append(endpoints, feeds.Endpoint{
			Kind: "kev",
			Request: feeds.Request{
				Name:     "KEV",
				URL:      a.cfg.Feeds.KEV.URL,
				Category: domain.CategoryCVE,
			},
		})
	}

	if a.cfg.Feeds.NVD.IsEnabled() {
		endpoints = append(endpoints, feeds.Endpoint{
			Kind: "nvd",
			Request: feeds.Request{
				Name:     "NVD",
				URL:      a.cfg.Feeds.NVD.URL,
				Category: domain.CategoryCVE,
				Options: map[string]string{
					"results_per_run": fmt.Sprintf("%d", a.cfg.Feeds.NVD.ResultsPerRun),
					"api_key":         a.cfg.Feeds.NVD.APIKey,
				},
			},
		})
	}

	return feeds.NewMultiSource(registry, endpoints, a.logger.With("component", "source"))
}
