package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/ports"
	"BrainCandy/internal/scanner"
)

// Options tunes how feeds are polled.
type Options struct {
	EntryLimit int
	Delay      time.Duration
	Shuffle    bool
}

// StrategySource implements CandidateSource via registered scanner strategies.
// Sites are polled one after another with a pause between them.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	promoted ports.DiscoveryRepository
	opts     Options
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, opts Options, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		opts:     opts,
		logger:   log,
	}
}

// WithPromoted also polls feeds promoted by source discovery.
func (s *StrategySource) WithPromoted(repo ports.DiscoveryRepository) *StrategySource {
	s.promoted = repo
	return s
}

// Fetch polls every site. A failing site is logged and contributes nothing.
func (s *StrategySource) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	sites := s.allSites(ctx)
	if s.opts.Shuffle {
		rand.Shuffle(len(sites), func(i, j int) { sites[i], sites[j] = sites[j], sites[i] })
	}

	s.debug("fetch feeds", "sites", len(sites))

	var aggregated []domain.Candidate
	for i, site := range sites {
		if i > 0 {
			if err := pause(ctx, s.opts.Delay); err != nil {
				return aggregated, err
			}
		}

		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			s.warn("skip site", "site", site.Name, "error", err)
			continue
		}

		results, err := strategy.Scan(ctx, scanner.Request{
			SiteName: site.Name,
			URL:      site.URL,
			Category: site.Category,
			Limit:    s.opts.EntryLimit,
			Options:  site.Options,
		})
		if err != nil {
			if ctx.Err() != nil {
				return aggregated, ctx.Err()
			}
			s.warn("scan site failed", "site", site.Name, "url", site.URL, "error", err)
			continue
		}

		for j := range results {
			if results[j].Source == "" {
				results[j].Source = site.Name
			}
		}
		s.debug("site produced candidates", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_candidates", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) allSites(ctx context.Context) []config.SiteConfig {
	sites := append([]config.SiteConfig(nil), s.sites...)
	if s.promoted == nil {
		return sites
	}

	ledger, err := s.promoted.LoadDiscovery(ctx)
	if err != nil {
		s.warn("load promoted feeds", "error", err)
		return sites
	}

	known := make(map[string]struct{}, len(sites))
	for _, site := range sites {
		known[site.URL] = struct{}{}
	}
	for _, feed := range ledger.Promoted {
		if _, ok := known[feed.URL]; ok {
			continue
		}
		sites = append(sites, config.SiteConfig{Name: feed.Name, Scanner: "rss", URL: feed.URL, Category: feed.Category})
	}
	return sites
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

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
