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

// PublishSettings configures the scored publish queue.
type PublishSettings struct {
	ChannelID          string
	MaxQueueSize       int
	MaxPerSource       int
	LowVolumeThreshold int
	PostDelay          time.Duration
	Location           *time.Location
}

// PublishSettingsFrom extracts queue settings from the application config.
func PublishSettingsFrom(cfg config.Config) PublishSettings {
	return PublishSettings{
		ChannelID:          cfg.Telegram.ChannelID,
		MaxQueueSize:       cfg.Curation.MaxQueueSize,
		MaxPerSource:       cfg.Curation.MaxPerSource,
		LowVolumeThreshold: cfg.Curation.LowVolumeThreshold,
		PostDelay:          cfg.Curation.PostDelay,
		Location:           cfg.Scheduler.Location(),
	}
}

// PublishDeps wires the publish queue.
type PublishDeps struct {
	Pipeline   *Pipeline
	Repository ports.StateRepository
	Notifier   ports.Notifier
	Clock      ports.Clock
	Settings   PublishSettings
	Logger     *slog.Logger
}

// PublishQueue keeps a bounded, score-ordered backlog and posts from it with
// at most one post per source per calendar day.
type PublishQueue struct {
	pipeline *Pipeline
	repo     ports.StateRepository
	notifier ports.Notifier
	clock    ports.Clock
	settings PublishSettings
	logger   *slog.Logger
}

// NewPublishQueue constructs the queue manager.
func NewPublishQueue(deps PublishDeps) *PublishQueue {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	settings := deps.Settings
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &PublishQueue{
		pipeline: deps.Pipeline,
		repo:     deps.Repository,
		notifier: deps.Notifier,
		clock:    clock,
		settings: settings,
		logger:   deps.Logger,
	}
}

// Refill scores fresh candidates into the queue and returns its new length.
func (q *PublishQueue) Refill(ctx context.Context) (int, error) {
	feedback, err := q.repo.LoadFeedback(ctx)
	if err != nil {
		return 0, fmt.Errorf("load feedback: %w", err)
	}
	rep := reputation.Compute(feedback)

	queue, err := q.repo.LoadQueue(ctx)
	if err != nil {
		return 0, fmt.Errorf("load queue: %w", err)
	}
	seen, err := q.repo.LoadSeen(ctx)
	if err != nil {
		return 0, fmt.Errorf("load seen: %w", err)
	}

	queued := make([]string, 0, len(queue))
	perSource := make(map[string]int)
	for _, entry := range queue {
		queued = append(queued, entry.Link)
		perSource[entry.Source]++
	}
	exclude := exclusions(seen, feedback, queued...)

	candidates, err := q.pipeline.Fresh(ctx, q.pipeline.AllSources(), exclude)
	if err != nil {
		return 0, err
	}
	if len(candidates) < q.settings.LowVolumeThreshold {
		candidates = append(candidates, q.pipeline.Fallback(FreshOnly, exclude, nil, 0)...)
	}

	scorer := q.pipeline.Scorer()
	added, belowThreshold, capped := 0, 0, 0
	for _, c := range candidates {
		if perSource[c.Source] >= q.settings.MaxPerSource {
			capped++
			continue
		}
		score := scorer.Score(c, rep)
		if !scorer.Admits(score) {
			belowThreshold++
			continue
		}
		queue = append(queue, domain.QueueEntry{Candidate: c, Score: score})
		perSource[c.Source]++
		added++
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Score > queue[j].Score
	})
	dropped := 0
	if limit := q.settings.MaxQueueSize; limit > 0 && len(queue) > limit {
		dropped = len(queue) - limit
		queue = queue[:limit]
	}

	if err := q.repo.SaveQueue(ctx, queue); err != nil {
		return 0, fmt.Errorf("save queue: %w", err)
	}

	q.info("queue refilled",
		"candidates", len(candidates),
		"added", added,
		"below_threshold", belowThreshold,
		"source_capped", capped,
		"dropped", dropped,
		"size", len(queue))
	return len(queue), nil
}

// Drain posts up to n queued entries to the channel, skipping sources that
// already posted today, and returns how many were posted.
func (q *PublishQueue) Drain(ctx context.Context, n int) (int, error) {
	queue, err := q.repo.LoadQueue(ctx)
	if err != nil {
		return 0, fmt.Errorf("load queue: %w", err)
	}
	if len(queue) == 0 {
		q.info("queue empty, refilling")
		if _, err := q.Refill(ctx); err != nil {
			return 0, err
		}
		if queue, err = q.repo.LoadQueue(ctx); err != nil {
			return 0, fmt.Errorf("load queue: %w", err)
		}
	}
	if len(queue) == 0 {
		q.info("nothing to post")
		return 0, nil
	}

	seen, err := q.repo.LoadSeen(ctx)
	if err != nil {
		return 0, fmt.Errorf("load seen: %w", err)
	}
	daily, err := q.repo.LoadDailySources(ctx)
	if err != nil {
		return 0, fmt.Errorf("load daily sources: %w", err)
	}
	today := domain.Day(q.clock.Now().In(q.settings.Location))
	daily = daily.For(today)

	remaining := make([]domain.QueueEntry, 0, len(queue))
	posted := 0
	for i, entry := range queue {
		if posted >= n || ctx.Err() != nil {
			remaining = append(remaining, queue[i:]...)
			break
		}

		key := normalize.URL(entry.Link)
		if seen.Contains(key) {
			q.info("dropping already posted entry", "link", entry.Link)
			continue
		}
		if daily.Has(entry.Source) {
			q.debug("source already posted today", "source", entry.Source)
			remaining = append(remaining, entry)
			continue
		}

		if err := q.notifier.Deliver(ctx, q.settings.ChannelID, channelMessage(entry.Candidate)); err != nil {
			q.warn("post failed", "link", entry.Link, "error", err)
			remaining = append(remaining, entry)
			continue
		}
		posted++
		q.info("posted", "title", entry.Title, "source", entry.Source, "score", entry.Score)

		daily = daily.Add(today, entry.Source)
		if err := q.repo.SaveDailySources(ctx, daily); err != nil {
			return posted, fmt.Errorf("save daily sources: %w", err)
		}
		seen.Add(key)
		if err := q.repo.SaveSeen(ctx, seen); err != nil {
			return posted, fmt.Errorf("save seen: %w", err)
		}

		if posted < n {
			_ = pause(ctx, q.settings.PostDelay)
		}
	}

	// Detached so a cancelled run still commits the trimmed queue.
	if err := q.repo.SaveQueue(context.WithoutCancel(ctx), remaining); err != nil {
		return posted, fmt.Errorf("save queue: %w", err)
	}
	q.info("queue drained", "posted", posted, "remaining", len(remaining))
	return posted, nil
}

func (q *PublishQueue) info(msg string, args ...any) {
	if q.logger != nil {
		q.logger.Info(msg, args...)
	}
}

func (q *PublishQueue) debug(msg string, args ...any) {
	if q.logger != nil {
		q.logger.Debug(msg, args...)
	}
}

func (q *PublishQueue) warn(msg string, args ...any) {
	if q.logger != nil {
		q.logger.Warn(msg, args...)
	}
}
