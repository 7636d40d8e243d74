package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/normalize"
	"BrainCandy/internal/ports"
	"BrainCandy/internal/reputation"
)

// ReviewSettings configures the training loop.
type ReviewSettings struct {
	ReviewerChatID string
	BatchSize      int
	SendDelay      time.Duration
}

// ReviewSettingsFrom extracts review settings from the application config.
func ReviewSettingsFrom(cfg config.Config) ReviewSettings {
	return ReviewSettings{
		ReviewerChatID: cfg.Telegram.ReviewerChatID,
		BatchSize:      cfg.Curation.ReviewBatchSize,
		SendDelay:      cfg.Curation.SendDelay,
	}
}

// ReviewDeps wires the training loop.
type ReviewDeps struct {
	Pipeline   *Pipeline
	Repository ports.StateRepository
	Notifier   ports.Notifier
	Verdicts   ports.VerdictSource
	Clock      ports.Clock
	Settings   ReviewSettings
	Logger     *slog.Logger
}

// ReviewLoop sends candidates to the reviewer and records their verdicts.
type ReviewLoop struct {
	pipeline *Pipeline
	repo     ports.StateRepository
	notifier ports.Notifier
	verdicts ports.VerdictSource
	clock    ports.Clock
	settings ReviewSettings
	newID    func() string
	logger   *slog.Logger
}

// NewReviewLoop constructs the training loop.
func NewReviewLoop(deps ReviewDeps) *ReviewLoop {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReviewLoop{
		pipeline: deps.Pipeline,
		repo:     deps.Repository,
		notifier: deps.Notifier,
		verdicts: deps.Verdicts,
		clock:    clock,
		settings: deps.Settings,
		newID:    uuid.NewString,
		logger:   deps.Logger,
	}
}

// ApplyVerdicts resolves the reviewer's replies against the oldest pending
// reviews and returns how many were recorded.
func (r *ReviewLoop) ApplyVerdicts(ctx context.Context) (int, error) {
	pending, err := r.repo.LoadPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pending: %w", err)
	}
	if pending.Len() == 0 || r.verdicts == nil {
		return 0, nil
	}

	verdicts, err := r.verdicts.Poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		r.warn("poll verdicts", "error", err)
		return 0, nil
	}
	if len(verdicts) == 0 {
		return 0, nil
	}

	feedback, err := r.repo.LoadFeedback(ctx)
	if err != nil {
		return 0, fmt.Errorf("load feedback: %w", err)
	}

	now := r.clock.Now()
	resolved := 0
	for _, v := range verdicts {
		if v.SenderID != r.settings.ReviewerChatID {
			r.debug("ignore message from other chat", "sender", v.SenderID)
			continue
		}
		records := pending.Resolve(v.Ratings, now)
		for _, rec := range records {
			r.info("verdict recorded", "rating", rec.Rating, "title", rec.Title, "source", rec.Source)
		}
		feedback = append(feedback, records...)
		resolved += len(records)
	}

	if resolved > 0 {
		if err := r.repo.SaveFeedback(ctx, feedback); err != nil {
			return 0, fmt.Errorf("save feedback: %w", err)
		}
		if err := r.repo.SavePending(ctx, pending); err != nil {
			return 0, fmt.Errorf("save pending: %w", err)
		}
	}

	if err := r.verdicts.Ack(ctx); err != nil {
		r.warn("ack verdicts", "error", err)
	}
	return resolved, nil
}

// Cycle applies verdicts and tops the pending batch up to the configured size.
func (r *ReviewLoop) Cycle(ctx context.Context) error {
	if _, err := r.ApplyVerdicts(ctx); err != nil {
		return err
	}

	pending, err := r.repo.LoadPending(ctx)
	if err != nil {
		return fmt.Errorf("load pending: %w", err)
	}

	target := r.settings.BatchSize
	if pending.Len() >= target {
		r.debug("waiting for verdicts", "pending", pending.Len())
		return nil
	}

	seen, err := r.repo.LoadSeen(ctx)
	if err != nil {
		return fmt.Errorf("load seen: %w", err)
	}
	feedback, err := r.repo.LoadFeedback(ctx)
	if err != nil {
		return fmt.Errorf("load feedback: %w", err)
	}

	inFlight := make([]string, 0, pending.Len())
	for _, entry := range pending.Entries() {
		inFlight = append(inFlight, entry.URL)
	}
	exclude := exclusions(seen, feedback, inFlight...)

	candidates, err := r.pipeline.Fresh(ctx, r.pipeline.FeedSources(), exclude)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		candidates = r.pipeline.Fallback(FreshOnly, exclude, nil, target)
	}
	if len(candidates) == 0 {
		r.info("no new articles for review")
		r.logStats(feedback, pending.Len())
		return nil
	}

	toSend := min(target-pending.Len(), len(candidates))
	for i := 0; i < toSend; i++ {
		if i > 0 {
			if err := pause(ctx, r.settings.SendDelay); err != nil {
				return err
			}
		}

		c := candidates[i]
		number := pending.Len() + 1
		if err := r.notifier.Deliver(ctx, r.settings.ReviewerChatID, reviewMessage(number, c)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.warn("send for review failed", "link", c.Link, "error", err)
			continue
		}

		pending.Append(domain.PendingReview{
			ID:     r.newID(),
			Title:  c.Title,
			URL:    c.Link,
			Source: c.Source,
			SentAt: r.clock.Now(),
		})
		seen.Add(normalize.URL(c.Link))

		if err := r.repo.SavePending(ctx, pending); err != nil {
			return fmt.Errorf("save pending: %w", err)
		}
		if err := r.repo.SaveSeen(ctx, seen); err != nil {
			return fmt.Errorf("save seen: %w", err)
		}
		r.info("sent for review", "number", number, "title", c.Title, "source", c.Source)
	}

	r.logStats(feedback, pending.Len())
	return nil
}

func (r *ReviewLoop) logStats(feedback []domain.FeedbackRecord, pending int) {
	stats := reputation.Summarize(feedback)
	r.info("training progress",
		"rated", stats.Total(),
		"good", stats.Good,
		"bad", stats.Bad,
		"sources", stats.Sources,
		"pending", pending)
}

func (r *ReviewLoop) info(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *ReviewLoop) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *ReviewLoop) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
