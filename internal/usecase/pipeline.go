package usecase

import (
	"context"
	"log/slog"
	"time"

	"BrainCandy/internal/domain"
	"BrainCandy/internal/filter"
	"BrainCandy/internal/normalize"
	"BrainCandy/internal/ports"
	"BrainCandy/internal/scoring"
)

// FallbackPolicy decides which canonical readings may be offered when the
// live sources produce nothing.
type FallbackPolicy int

const (
	// FreshOnly offers canonical readings that were never seen, judged or queued.
	FreshOnly FallbackPolicy = iota
	// AllowApproved additionally lets readings rated good re-enter after being seen.
	AllowApproved
)

// PipelineDeps wires the candidate sources and shared policies.
type PipelineDeps struct {
	// Feeds are the configured and promoted feeds.
	Feeds ports.CandidateSource
	// Extra sources polled only when filling the publish queue.
	Extra     []ports.CandidateSource
	Canonical []domain.CanonicalReading
	Filter    *filter.Filter
	Scorer    *scoring.Scorer
	Logger    *slog.Logger
}

// Pipeline gathers, filters and deduplicates candidates for every manager.
type Pipeline struct {
	feeds     ports.CandidateSource
	extra     []ports.CandidateSource
	canonical []domain.CanonicalReading
	filter    *filter.Filter
	scorer    *scoring.Scorer
	logger    *slog.Logger
}

// NewPipeline constructs the shared candidate pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		feeds:     deps.Feeds,
		extra:     deps.Extra,
		canonical: deps.Canonical,
		filter:    deps.Filter,
		scorer:    deps.Scorer,
		logger:    deps.Logger,
	}
}

// Scorer exposes the scoring policy shared by the managers.
func (p *Pipeline) Scorer() *scoring.Scorer {
	return p.scorer
}

// FeedSources returns the sources consulted by review and production cycles.
func (p *Pipeline) FeedSources() []ports.CandidateSource {
	if p.feeds == nil {
		return nil
	}
	return []ports.CandidateSource{p.feeds}
}

// AllSources returns the feeds followed by the extra sources.
func (p *Pipeline) AllSources() []ports.CandidateSource {
	return append(p.FeedSources(), p.extra...)
}

// Fresh gathers candidates from sources, drops blocked ones and any whose
// normalized link is already in exclude. Accepted links are added to exclude.
func (p *Pipeline) Fresh(ctx context.Context, sources []ports.CandidateSource, exclude LinkSet) ([]domain.Candidate, error) {
	raw, err := p.gather(ctx, sources)
	if err != nil {
		return nil, err
	}

	fresh := make([]domain.Candidate, 0, len(raw))
	for _, c := range raw {
		if blocked, reason := p.filter.Check(c.Link, c.Title); blocked {
			p.debug("candidate blocked", "link", c.Link, "reason", reason)
			continue
		}
		key := normalize.URL(c.Link)
		if key == "" || !exclude.Add(key) {
			continue
		}
		fresh = append(fresh, c)
	}

	p.info("collected candidates", "raw", len(raw), "fresh", len(fresh))
	return fresh, nil
}

// Fallback returns canonical readings allowed by policy, at most limit when
// limit is positive. Accepted links are added to exclude. Canonical readings
// are curated by hand, so the blocklist does not apply to them.
func (p *Pipeline) Fallback(policy FallbackPolicy, exclude LinkSet, approved map[string]struct{}, limit int) []domain.Candidate {
	taken := LinkSet{}
	var out []domain.Candidate
	for _, reading := range p.canonical {
		if limit > 0 && len(out) >= limit {
			break
		}

		c := reading.Candidate()
		key := normalize.URL(c.Link)
		if key == "" || taken.Has(key) {
			continue
		}
		_, isApproved := approved[key]
		if exclude.Has(key) && !(policy == AllowApproved && isApproved) {
			continue
		}

		taken.Add(key)
		exclude.Add(key)
		out = append(out, c)
	}

	p.info("canonical fallback", "count", len(out))
	return out
}

func (p *Pipeline) gather(ctx context.Context, sources []ports.CandidateSource) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, src := range sources {
		if src == nil {
			continue
		}
		items, err := src.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.warn("candidate source failed", "error", err)
		}
		out = append(out, items...)
	}
	return out, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

// LinkSet holds normalized links.
type LinkSet map[string]struct{}

// Add inserts key and reports whether it was absent.
func (s LinkSet) Add(key string) bool {
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Has reports membership.
func (s LinkSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// exclusions builds the identity set of everything already seen or judged,
// plus any extra links such as pending reviews or queued entries.
func exclusions(seen *domain.SeenSet, log []domain.FeedbackRecord, extra ...string) LinkSet {
	set := LinkSet{}
	for _, link := range seen.Links() {
		set.Add(normalize.URL(link))
	}
	for _, rec := range log {
		set.Add(normalize.URL(rec.URL))
	}
	for _, link := range extra {
		set.Add(normalize.URL(link))
	}
	return set
}

// SystemClock reads the wall clock.
type SystemClock struct{}

var _ ports.Clock = SystemClock{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
