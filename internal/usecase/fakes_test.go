package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/filter"
	"BrainCandy/internal/ports"
	"BrainCandy/internal/scoring"
)

type memRepo struct {
	seen      *domain.SeenSet
	feedback  []domain.FeedbackRecord
	pending   domain.PendingQueue
	queue     []domain.QueueEntry
	daily     domain.DailySources
	discovery domain.DiscoveryLedger
}

var _ ports.StateRepository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{seen: domain.NewSeenSet()}
}

func (m *memRepo) LoadSeen(context.Context) (*domain.SeenSet, error) {
	return domain.NewSeenSet(m.seen.Links()...), nil
}

func (m *memRepo) SaveSeen(_ context.Context, seen *domain.SeenSet) error {
	m.seen = domain.NewSeenSet(seen.Links()...)
	return nil
}

func (m *memRepo) LoadFeedback(context.Context) ([]domain.FeedbackRecord, error) {
	return append([]domain.FeedbackRecord(nil), m.feedback...), nil
}

func (m *memRepo) SaveFeedback(_ context.Context, log []domain.FeedbackRecord) error {
	m.feedback = append([]domain.FeedbackRecord(nil), log...)
	return nil
}

func (m *memRepo) LoadPending(context.Context) (domain.PendingQueue, error) {
	return domain.NewPendingQueue(m.pending.Entries()...), nil
}

func (m *memRepo) SavePending(_ context.Context, pending domain.PendingQueue) error {
	m.pending = domain.NewPendingQueue(pending.Entries()...)
	return nil
}

func (m *memRepo) LoadQueue(context.Context) ([]domain.QueueEntry, error) {
	return append([]domain.QueueEntry(nil), m.queue...), nil
}

func (m *memRepo) SaveQueue(_ context.Context, queue []domain.QueueEntry) error {
	m.queue = append([]domain.QueueEntry(nil), queue...)
	return nil
}

func (m *memRepo) LoadDailySources(context.Context) (domain.DailySources, error) {
	return m.daily, nil
}

func (m *memRepo) SaveDailySources(_ context.Context, daily domain.DailySources) error {
	m.daily = daily
	return nil
}

func (m *memRepo) LoadDiscovery(context.Context) (domain.DiscoveryLedger, error) {
	return m.discovery, nil
}

func (m *memRepo) SaveDiscovery(_ context.Context, ledger domain.DiscoveryLedger) error {
	m.discovery = ledger
	return nil
}

type sentMessage struct {
	recipient string
	text      string
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn string
}

func (f *fakeNotifier) Deliver(_ context.Context, recipient, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, sentMessage{recipient: recipient, text: text})
	return nil
}

type fakeVerdicts struct {
	verdicts []ports.Verdict
	polled   int
	acked    int
}

func (f *fakeVerdicts) Poll(context.Context) ([]ports.Verdict, error) {
	f.polled++
	return f.verdicts, nil
}

func (f *fakeVerdicts) Ack(context.Context) error {
	f.acked++
	f.verdicts = nil
	return nil
}

type staticSource struct {
	items []domain.Candidate
	err   error
}

func (s staticSource) Fetch(context.Context) ([]domain.Candidate, error) {
	return s.items, s.err
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func testPipeline(feeds ports.CandidateSource, extra []ports.CandidateSource, canonical []domain.CanonicalReading) *Pipeline {
	cfg := config.Default()
	return NewPipeline(PipelineDeps{
		Feeds:     feeds,
		Extra:     extra,
		Canonical: canonical,
		Filter:    filter.New(cfg.Filters),
		Scorer:    scoring.New(cfg.Scoring),
	})
}

func candidate(source string, n int) domain.Candidate {
	return domain.Candidate{
		Title:  source + " essay",
		Link:   "https://" + strings.ToLower(strings.ReplaceAll(source, " ", "")) + ".example/p/" + string(rune('a'+n)),
		Source: source,
	}
}
