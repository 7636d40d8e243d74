package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"BrainCandy/internal/config"
	"BrainCandy/internal/filter"
	"BrainCandy/internal/infrastructure/discovery"
	"BrainCandy/internal/infrastructure/feeds"
	"BrainCandy/internal/infrastructure/hackernews"
	"BrainCandy/internal/infrastructure/httpapi"
	"BrainCandy/internal/infrastructure/scheduler"
	"BrainCandy/internal/infrastructure/storage"
	"BrainCandy/internal/infrastructure/telegram"
	"BrainCandy/internal/logging"
	"BrainCandy/internal/ports"
	"BrainCandy/internal/scanner"
	"BrainCandy/internal/scoring"
	"BrainCandy/internal/usecase"
)

// Run modes.
const (
	ModeTraining   = "training"
	ModeProduction = "production"
	ModeScheduled  = "scheduled"
	ModeOnce       = "once"
	ModeRefill     = "refill"
	ModeDrain      = "drain"
	ModeDiscover   = "discover"
)

// ErrUnknownMode is returned for an unsupported run mode.
var ErrUnknownMode = errors.New("unknown run mode")

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	store      ports.KeyValueStore
	repo       ports.StateRepository
	clock      ports.Clock
	review     *usecase.ReviewLoop
	publish    *usecase.PublishQueue
	production *usecase.DirectPublisher
	discovery  *usecase.Discovery
	status     *httpapi.Status

	// runMu keeps jobs of one process from running concurrently.
	runMu sync.Mutex
}

// New opens the state store and builds every use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	repo := storage.NewRepository(store)
	clock := usecase.SystemClock{}

	redirects := scanner.Redirects(cfg.Redirects)
	registry := scanner.NewRegistry()
	registry.Register(feeds.NewRSSScanner(nil, redirects, baseLogger.With("component", "scanner.rss")), "atom")

	feedSource := feeds.NewStrategySource(registry, cfg.Sites, feeds.Options{
		EntryLimit: cfg.Curation.FeedEntryLimit,
		Delay:      cfg.Curation.SourceDelay,
		Shuffle:    cfg.Curation.ShuffleFeeds,
	}, baseLogger.With("component", "source.feeds")).WithPromoted(repo)

	blocklist := filter.New(cfg.Filters)
	hnClient := hackernews.NewClient(cfg.HackerNews, nil)
	var extra []ports.CandidateSource
	if cfg.HackerNews.Enabled {
		hn := hackernews.NewSource(hnClient, cfg.HackerNews, redirects, baseLogger.With("component", "source.hackernews"))
		extra = append(extra, hn.WithFilter(blocklist))
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Feeds:     feedSource,
		Extra:     extra,
		Canonical: cfg.Canonical,
		Filter:    blocklist,
		Scorer:    scoring.New(cfg.Scoring),
		Logger:    baseLogger.With("component", "pipeline"),
	})

	tg := telegram.NewClient(cfg.Telegram, nil)
	notifier := telegram.NewNotifier(tg)

	httpClient := &http.Client{Timeout: cfg.Discovery.Timeout}

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		store:  store,
		repo:   repo,
		clock:  clock,
		review: usecase.NewReviewLoop(usecase.ReviewDeps{
			Pipeline:   pipeline,
			Repository: repo,
			Notifier:   notifier,
			Verdicts:   telegram.NewVerdictSource(tg, cfg.Telegram.PollTimeout),
			Clock:      clock,
			Settings:   usecase.ReviewSettingsFrom(cfg),
			Logger:     baseLogger.With("component", "review"),
		}),
		publish: usecase.NewPublishQueue(usecase.PublishDeps{
			Pipeline:   pipeline,
			Repository: repo,
			Notifier:   notifier,
			Clock:      clock,
			Settings:   usecase.PublishSettingsFrom(cfg),
			Logger:     baseLogger.With("component", "publish"),
		}),
		production: usecase.NewDirectPublisher(usecase.ProductionDeps{
			Pipeline:   pipeline,
			Repository: repo,
			Notifier:   notifier,
			Settings:   usecase.ProductionSettingsFrom(cfg),
			Logger:     baseLogger.With("component", "production"),
		}),
		discovery: usecase.NewDiscovery(usecase.DiscoveryDeps{
			Recommendations: discovery.NewSubstackScraper(httpClient, cfg.Discovery.UserAgent, baseLogger.With("component", "discovery.substack")),
			Stories:         hnClient,
			Prober:          discovery.NewFeedProber(httpClient, cfg.Discovery.FeedPatterns, cfg.Discovery.UserAgent),
			Verifier:        discovery.NewFeedVerifier(httpClient, cfg.Discovery.UserAgent),
			Repository:      repo,
			Notifier:        notifier,
			Clock:           clock,
			Sites:           cfg.Sites,
			Settings:        usecase.DiscoverySettingsFrom(cfg),
			Logger:          baseLogger.With("component", "discovery"),
		}),
		status: httpapi.NewStatus(repo, clock, cfg.Scheduler.Location()),
	}, nil
}

// Close releases the state store.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Run executes mode. One-shot modes return when done; the others block
// until ctx is cancelled. count is the number of posts for drain.
func (a *Application) Run(ctx context.Context, mode string, count int) error {
	a.logger.Info("starting", "mode", mode, "storage", a.cfg.Storage.Driver)

	switch mode {
	case ModeTraining:
		return a.serve(ctx, a.job(ModeTraining, a.cfg.Scheduler.TrainingSpec, true, func(ctx context.Context, _ time.Time) error {
			return a.review.Cycle(ctx)
		}))
	case ModeProduction:
		return a.serve(ctx, a.job(ModeProduction, a.cfg.Scheduler.ProductionSpec, true, func(ctx context.Context, _ time.Time) error {
			_, err := a.production.Run(ctx)
			return err
		}))
	case ModeScheduled:
		if _, err := a.publish.Refill(ctx); err != nil {
			a.logger.Error("initial refill failed", "error", err)
		}
		return a.serve(ctx,
			a.job("posting", a.cfg.Scheduler.PostingSpec, false, a.postingCycle),
			a.job(ModeDiscover, a.cfg.Scheduler.DiscoverySpec, false, func(ctx context.Context, _ time.Time) error {
				_, err := a.discovery.Run(ctx)
				return err
			}),
		)
	case ModeOnce:
		return a.once(ctx)
	case ModeRefill:
		size, err := a.publish.Refill(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("refill complete", "queue", size)
		return nil
	case ModeDrain:
		if count <= 0 {
			count = a.cfg.Curation.DrainCount
		}
		posted, err := a.publish.Drain(ctx, count)
		if err != nil {
			return err
		}
		a.logger.Info("drain complete", "posted", posted)
		return nil
	case ModeDiscover:
		_, err := a.discovery.Run(ctx)
		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}

func (a *Application) postingCycle(ctx context.Context, _ time.Time) error {
	if _, err := a.publish.Drain(ctx, a.cfg.Curation.DrainCount); err != nil {
		return err
	}
	_, err := a.publish.Refill(ctx)
	return err
}

func (a *Application) once(ctx context.Context) error {
	now := a.clock.Now()
	if !a.cfg.Scheduler.InPostingWindow(now) {
		a.logger.Info("outside posting hours, skipping",
			"hour", now.In(a.cfg.Scheduler.Location()).Hour(),
			"start", a.cfg.Scheduler.PostingStartHour,
			"end", a.cfg.Scheduler.PostingEndHour)
		return nil
	}
	if _, err := a.publish.Refill(ctx); err != nil {
		return err
	}
	_, err := a.publish.Drain(ctx, a.cfg.Curation.DrainCount)
	return err
}

func (a *Application) job(name, spec string, immediate bool, job usecase.Job) *usecase.Scheduler {
	opts := []scheduler.Option{
		scheduler.WithLogger(a.logger.With("component", "cron", "job", name)),
		scheduler.WithRunLock(&a.runMu),
	}
	if immediate {
		opts = append(opts, scheduler.RunImmediately())
	}
	driver := scheduler.NewCronScheduler(spec, a.cfg.Scheduler.Location(), opts...)
	return usecase.NewScheduler(name, driver, job, a.logger.With("component", "scheduler"))
}

// serve starts the schedulers and the optional status API, then blocks until ctx ends.
func (a *Application) serve(ctx context.Context, jobs ...*usecase.Scheduler) error {
	for _, s := range jobs {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, s := range jobs {
			if err := s.Stop(stopCtx); err != nil {
				a.logger.Warn("stop scheduler", "error", err)
			}
		}
	}()

	if a.cfg.HTTP.Addr != "" {
		server := httpapi.NewServer(a.cfg.HTTP.Addr, httpapi.NewRouter(a.status), a.logger.With("component", "httpapi"))
		return server.Run(ctx)
	}

	<-ctx.Done()
	return nil
}
