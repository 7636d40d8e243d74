package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/normalize"
	"BrainCandy/internal/ports"
	"BrainCandy/internal/reputation"
)

// ProductionSettings configures direct posting.
type ProductionSettings struct {
	ChannelID     string
	PostsPerCycle int
	FallbackLimit int
	PostDelay     time.Duration
}

// ProductionSettingsFrom extracts production settings from the application config.
func ProductionSettingsFrom(cfg config.Config) ProductionSettings {
	return ProductionSettings{
		ChannelID:     cfg.Telegram.ChannelID,
		PostsPerCycle: cfg.Curation.PostsPerCycle,
		FallbackLimit: cfg.Curation.ProductionFallback,
		PostDelay:     cfg.Curation.PostDelay,
	}
}

// ProductionDeps wires the direct publisher.
type ProductionDeps struct {
	Pipeline   *Pipeline
	Repository ports.StateRepository
	Notifier   ports.Notifier
	Settings   ProductionSettings
	Logger     *slog.Logger
}

// DirectPublisher scores fresh feed items and posts the best straight to the
// channel without a backlog.
type DirectPublisher struct {
	pipeline *Pipeline
	repo     ports.StateRepository
	notifier ports.Notifier
	settings ProductionSettings
	logger   *slog.Logger
}

// NewDirectPublisher constructs the production-mode publisher.
func NewDirectPublisher(deps ProductionDeps) *DirectPublisher {
	return &DirectPublisher{
		pipeline: deps.Pipeline,
		repo:     deps.Repository,
		notifier: deps.Notifier,
		settings: deps.Settings,
		logger:   deps.Logger,
	}
}

// Run performs one production cycle and returns the number of posts.
func (d *DirectPublisher) Run(ctx context.Context) (int, error) {
	feedback, err := d.repo.LoadFeedback(ctx)
	if err != nil {
		return 0, fmt.Errorf("load feedback: %w", err)
	}
	seen, err := d.repo.LoadSeen(ctx)
	if err != nil {
		return 0, fmt.Errorf("load seen: %w", err)
	}
	rep := reputation.Compute(feedback)
	exclude := exclusions(seen, feedback)

	candidates, err := d.pipeline.Fresh(ctx, d.pipeline.FeedSources(), exclude)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		approved := reputation.Approved(feedback, normalize.URL)
		candidates = d.pipeline.Fallback(AllowApproved, exclude, approved, d.settings.FallbackLimit)
	}

	scorer := d.pipeline.Scorer()
	scored := make([]domain.QueueEntry, 0, len(candidates))
	for _, c := range candidates {
		score := scorer.Score(c, rep)
		if !scorer.Admits(score) {
			continue
		}
		scored = append(scored, domain.QueueEntry{Candidate: c, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	postedSources := make(map[string]struct{})
	posted := 0
	for _, entry := range scored {
		if posted >= d.settings.PostsPerCycle {
			break
		}
		if _, ok := postedSources[entry.Source]; ok {
			continue
		}

		if err := d.notifier.Deliver(ctx, d.settings.ChannelID, channelMessage(entry.Candidate)); err != nil {
			if ctx.Err() != nil {
				return posted, ctx.Err()
			}
			d.warn("post failed", "link", entry.Link, "error", err)
			continue
		}
		posted++
		postedSources[entry.Source] = struct{}{}

		seen.Add(normalize.URL(entry.Link))
		if err := d.repo.SaveSeen(ctx, seen); err != nil {
			return posted, fmt.Errorf("save seen: %w", err)
		}
		d.info("posted", "title", entry.Title, "source", entry.Source, "score", entry.Score)

		if posted < d.settings.PostsPerCycle {
			if err := pause(ctx, d.settings.PostDelay); err != nil {
				return posted, err
			}
		}
	}

	d.info("production cycle done", "candidates", len(candidates), "admitted", len(scored), "posted", posted)
	return posted, nil
}

func (d *DirectPublisher) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}

func (d *DirectPublisher) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
