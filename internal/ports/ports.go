package ports

import (
	"context"
	"errors"
	"time"

	"BrainCandy/internal/domain"
)

// ErrNotConfigured is returned by adapters missing credentials or endpoints.
var ErrNotConfigured = errors.New("adapter is not configured")

// CandidateSource pulls fresh candidates from one upstream provider.
type CandidateSource interface {
	Fetch(ctx context.Context) ([]domain.Candidate, error)
}

// Notifier delivers a rendered message to a chat or channel.
type Notifier interface {
	Deliver(ctx context.Context, recipient, text string) error
}

// Verdict is one reviewer message already parsed into ratings.
type Verdict struct {
	SenderID string
	Ratings  []domain.Rating
}

// VerdictSource polls reviewer replies; Ack marks everything polled so far as consumed.
type VerdictSource interface {
	Poll(ctx context.Context) ([]Verdict, error)
	Ack(ctx context.Context) error
}

// KeyValueStore persists whole JSON documents under string keys.
type KeyValueStore interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, value any) error
	Close() error
}

// SeenRepository stores the links that were already surfaced.
type SeenRepository interface {
	LoadSeen(ctx context.Context) (*domain.SeenSet, error)
	SaveSeen(ctx context.Context, seen *domain.SeenSet) error
}

// FeedbackRepository stores the append-only feedback log.
type FeedbackRepository interface {
	LoadFeedback(ctx context.Context) ([]domain.FeedbackRecord, error)
	SaveFeedback(ctx context.Context, log []domain.FeedbackRecord) error
}

// PendingRepository stores articles awaiting review.
type PendingRepository interface {
	LoadPending(ctx context.Context) (domain.PendingQueue, error)
	SavePending(ctx context.Context, pending domain.PendingQueue) error
}

// QueueRepository stores the publish queue.
type QueueRepository interface {
	LoadQueue(ctx context.Context) ([]domain.QueueEntry, error)
	SaveQueue(ctx context.Context, queue []domain.QueueEntry) error
}

// DailySourcesRepository stores sources posted on the current day.
type DailySourcesRepository interface {
	LoadDailySources(ctx context.Context) (domain.DailySources, error)
	SaveDailySources(ctx context.Context, daily domain.DailySources) error
}

// DiscoveryRepository stores discovered and promoted sources.
type DiscoveryRepository interface {
	LoadDiscovery(ctx context.Context) (domain.DiscoveryLedger, error)
	SaveDiscovery(ctx context.Context, ledger domain.DiscoveryLedger) error
}

// StateRepository groups every persisted collection.
type StateRepository interface {
	SeenRepository
	FeedbackRepository
	PendingRepository
	QueueRepository
	DailySourcesRepository
	DiscoveryRepository
}

// RecommendationSource lists the publications a newsletter recommends.
type RecommendationSource interface {
	Recommendations(ctx context.Context, feedURL string) ([]domain.DiscoveredSource, error)
}

// StoryIndex pages through popular link-aggregator stories.
type StoryIndex interface {
	TopStories(ctx context.Context, minPoints, hitsPerPage, page int) ([]domain.Story, error)
}

// FeedProber guesses the feed URL of a site, returning "" when none answers.
type FeedProber interface {
	Probe(ctx context.Context, host string) string
}

// FeedVerifier checks that a feed URL parses as RSS or Atom.
type FeedVerifier interface {
	Verify(ctx context.Context, feedURL string) error
}

// Clock yields the current time; tests pin it to simulate days.
type Clock interface {
	Now() time.Time
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
