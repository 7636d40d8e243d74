package storage

import (
	"context"
	"errors"
	"fmt"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/normalize"
	"BrainCandy/internal/ports"
)

// ErrUnknownDriver is returned for an unsupported storage.driver value.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Keys of the persisted collections.
const (
	KeySeen         = "posted"
	KeyFeedback     = "training_log"
	KeyPending      = "pending_review"
	KeyQueue        = "queue"
	KeyDailySources = "daily_sources"
	KeyDiscovery    = "discovered_sources"
)

// Open builds the key-value store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (ports.KeyValueStore, error) {
	switch cfg.Driver {
	case config.DriverJSON, "":
		return NewJSONFileStore(cfg.Path)
	case config.DriverSQLite:
		return OpenSQLiteStore(cfg.DSN)
	case config.DriverRedis:
		return OpenRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

// Repository maps every logical collection onto a key-value store.
type Repository struct {
	kv ports.KeyValueStore
}

var _ ports.StateRepository = (*Repository)(nil)

// NewRepository wraps kv.
func NewRepository(kv ports.KeyValueStore) *Repository {
	return &Repository{kv: kv}
}

// LoadSeen returns the seen set, normalizing entries written by older versions.
func (r *Repository) LoadSeen(ctx context.Context) (*domain.SeenSet, error) {
	var links []string
	if _, err := r.kv.Load(ctx, KeySeen, &links); err != nil {
		return nil, fmt.Errorf("load seen: %w", err)
	}

	seen := domain.NewSeenSet()
	for _, link := range links {
		seen.Add(normalize.URL(link))
	}
	return seen, nil
}

// SaveSeen persists the seen set.
func (r *Repository) SaveSeen(ctx context.Context, seen *domain.SeenSet) error {
	if err := r.kv.Save(ctx, KeySeen, seen); err != nil {
		return fmt.Errorf("save seen: %w", err)
	}
	return nil
}

// LoadFeedback returns the feedback log.
func (r *Repository) LoadFeedback(ctx context.Context) ([]domain.FeedbackRecord, error) {
	var log []domain.FeedbackRecord
	if _, err := r.kv.Load(ctx, KeyFeedback, &log); err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	return log, nil
}

// SaveFeedback persists the feedback log.
func (r *Repository) SaveFeedback(ctx context.Context, log []domain.FeedbackRecord) error {
	if log == nil {
		log = []domain.FeedbackRecord{}
	}
	if err := r.kv.Save(ctx, KeyFeedback, log); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// LoadPending returns the review FIFO.
func (r *Repository) LoadPending(ctx context.Context) (domain.PendingQueue, error) {
	var pending domain.PendingQueue
	if _, err := r.kv.Load(ctx, KeyPending, &pending); err != nil {
		return domain.PendingQueue{}, fmt.Errorf("load pending: %w", err)
	}
	return pending, nil
}

// SavePending persists the review FIFO.
func (r *Repository) SavePending(ctx context.Context, pending domain.PendingQueue) error {
	if err := r.kv.Save(ctx, KeyPending, pending); err != nil {
		return fmt.Errorf("save pending: %w", err)
	}
	return nil
}

// LoadQueue returns the publish queue in stored order.
func (r *Repository) LoadQueue(ctx context.Context) ([]domain.QueueEntry, error) {
	var queue []domain.QueueEntry
	if _, err := r.kv.Load(ctx, KeyQueue, &queue); err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	return queue, nil
}

// SaveQueue persists the publish queue.
func (r *Repository) SaveQueue(ctx context.Context, queue []domain.QueueEntry) error {
	if queue == nil {
		queue = []domain.QueueEntry{}
	}
	if err := r.kv.Save(ctx, KeyQueue, queue); err != nil {
		return fmt.Errorf("save queue: %w", err)
	}
	return nil
}

// LoadDailySources returns the stored daily ledger as is; callers reset it by date.
func (r *Repository) LoadDailySources(ctx context.Context) (domain.DailySources, error) {
	var daily domain.DailySources
	if _, err := r.kv.Load(ctx, KeyDailySources, &daily); err != nil {
		return domain.DailySources{}, fmt.Errorf("load daily sources: %w", err)
	}
	return daily, nil
}

// SaveDailySources persists the daily ledger.
func (r *Repository) SaveDailySources(ctx context.Context, daily domain.DailySources) error {
	if daily.Sources == nil {
		daily.Sources = []string{}
	}
	if err := r.kv.Save(ctx, KeyDailySources, daily); err != nil {
		return fmt.Errorf("save daily sources: %w", err)
	}
	return nil
}

// LoadDiscovery returns the discovery ledger.
func (r *Repository) LoadDiscovery(ctx context.Context) (domain.DiscoveryLedger, error) {
	var ledger domain.DiscoveryLedger
	if _, err := r.kv.Load(ctx, KeyDiscovery, &ledger); err != nil {
		return domain.DiscoveryLedger{}, fmt.Errorf("load discovery: %w", err)
	}
	return ledger, nil
}

// SaveDiscovery persists the discovery ledger.
func (r *Repository) SaveDiscovery(ctx context.Context, ledger domain.DiscoveryLedger) error {
	if err := r.kv.Save(ctx, KeyDiscovery, ledger); err != nil {
		return fmt.Errorf("save discovery: %w", err)
	}
	return nil
}
