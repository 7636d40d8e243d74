package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/ports"
)

const (
	minDomainLength  = 5
	maxSampleTitles  = 3
	substackSuffix   = ".substack.com"
	promotedCategory = "Discovered"
)

// DiscoverySettings tunes source discovery.
type DiscoverySettings struct {
	ReviewerChatID string
	MinPoints      int
	Pages          int
	HitsPerPage    int
	MinDomainHits  int
	MaxSubstacks   int
	Promote        int
	ReportSize     int
	IgnoreDomains  []string
}

// DiscoverySettingsFrom extracts discovery settings from the application config.
func DiscoverySettingsFrom(cfg config.Config) DiscoverySettings {
	return DiscoverySettings{
		ReviewerChatID: cfg.Telegram.ReviewerChatID,
		MinPoints:      cfg.Discovery.MinPoints,
		Pages:          cfg.Discovery.Pages,
		HitsPerPage:    cfg.Discovery.HitsPerPage,
		MinDomainHits:  cfg.Discovery.MinDomainHits,
		MaxSubstacks:   cfg.Discovery.MaxSubstacks,
		Promote:        cfg.Discovery.Promote,
		ReportSize:     cfg.Discovery.ReportSize,
		IgnoreDomains:  cfg.Discovery.IgnoreDomains,
	}
}

// DiscoveryDeps wires the discovery use case.
type DiscoveryDeps struct {
	Recommendations ports.RecommendationSource
	Stories         ports.StoryIndex
	Prober          ports.FeedProber
	Verifier        ports.FeedVerifier
	Repository      ports.DiscoveryRepository
	Notifier        ports.Notifier
	Clock           ports.Clock
	Sites           []config.SiteConfig
	Settings        DiscoverySettings
	Logger          *slog.Logger
}

// DiscoveryResult summarizes one discovery run.
type DiscoveryResult struct {
	New      int
	Tracked  int
	Promoted []domain.PromotedFeed
}

// Discovery finds new writers through newsletter recommendations and popular
// link-aggregator domains, and promotes the best of them into the feed list.
type Discovery struct {
	recommendations ports.RecommendationSource
	stories         ports.StoryIndex
	prober          ports.FeedProber
	verifier        ports.FeedVerifier
	repo            ports.DiscoveryRepository
	notifier        ports.Notifier
	clock           ports.Clock
	sites           []config.SiteConfig
	settings        DiscoverySettings
	logger          *slog.Logger
}

// NewDiscovery constructs the discovery use case.
func NewDiscovery(deps DiscoveryDeps) *Discovery {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &Discovery{
		recommendations: deps.Recommendations,
		stories:         deps.Stories,
		prober:          deps.Prober,
		verifier:        deps.Verifier,
		repo:            deps.Repository,
		notifier:        deps.Notifier,
		clock:           clock,
		sites:           deps.Sites,
		settings:        deps.Settings,
		logger:          deps.Logger,
	}
}

// Run performs one discovery pass, persists the ledger and reports to the reviewer.
func (d *Discovery) Run(ctx context.Context) (DiscoveryResult, error) {
	ledger, err := d.repo.LoadDiscovery(ctx)
	if err != nil {
		return DiscoveryResult{}, fmt.Errorf("load discovery: %w", err)
	}

	known := d.knownDomains(ledger)
	seen := make(map[string]struct{}, len(ledger.SeenDomains))
	for _, host := range ledger.SeenDomains {
		seen[host] = struct{}{}
	}

	now := d.clock.Now()
	var found []domain.DiscoveredSource
	track := func(src domain.DiscoveredSource) {
		if src.Domain == "" {
			return
		}
		if _, ok := known[src.Domain]; ok {
			return
		}
		if _, ok := seen[src.Domain]; ok {
			return
		}
		seen[src.Domain] = struct{}{}
		if src.Name == "" {
			src.Name = nameFromHost(src.Domain)
		}
		src.DiscoveredAt = now
		found = append(found, src)
		ledger.SeenDomains = append(ledger.SeenDomains, src.Domain)
	}

	for _, src := range d.substackRecommendations(ctx) {
		track(src)
	}
	if err := ctx.Err(); err != nil {
		return DiscoveryResult{}, err
	}
	for _, src := range d.mineStories(ctx) {
		if _, ok := known[src.Domain]; ok {
			continue
		}
		if _, ok := seen[src.Domain]; ok {
			continue
		}
		src.FeedURL = d.feedFor(ctx, src.Domain)
		track(src)
	}
	if err := ctx.Err(); err != nil {
		return DiscoveryResult{}, err
	}

	ledger.Sources = append(ledger.Sources, found...)
	promoted := d.promote(ctx, &ledger, known)
	ledger.UpdatedAt = now

	if err := d.repo.SaveDiscovery(ctx, ledger); err != nil {
		return DiscoveryResult{}, fmt.Errorf("save discovery: %w", err)
	}

	result := DiscoveryResult{New: len(found), Tracked: len(ledger.Sources), Promoted: promoted}
	d.info("discovery done", "new", result.New, "tracked", result.Tracked, "promoted", len(promoted))
	d.report(ctx, result, Ranked(ledger.Sources))
	return result, nil
}

func (d *Discovery) knownDomains(ledger domain.DiscoveryLedger) map[string]struct{} {
	known := make(map[string]struct{}, len(d.sites)+len(ledger.Promoted))
	for _, site := range d.sites {
		if host := hostOf(site.URL); host != "" {
			known[host] = struct{}{}
		}
	}
	for _, feed := range ledger.Promoted {
		known[feed.Domain] = struct{}{}
	}
	return known
}

func (d *Discovery) substackRecommendations(ctx context.Context) []domain.DiscoveredSource {
	if d.recommendations == nil {
		return nil
	}

	var feeds []string
	unique := make(map[string]struct{})
	for _, site := range d.sites {
		host := hostOf(site.URL)
		if !strings.HasSuffix(host, substackSuffix) {
			continue
		}
		if _, ok := unique[host]; ok {
			continue
		}
		unique[host] = struct{}{}
		feeds = append(feeds, site.URL)
	}
	sort.Strings(feeds)
	if limit := d.settings.MaxSubstacks; limit > 0 && len(feeds) > limit {
		feeds = feeds[:limit]
	}

	var out []domain.DiscoveredSource
	for _, feed := range feeds {
		recs, err := d.recommendations.Recommendations(ctx, feed)
		if err != nil {
			if ctx.Err() != nil {
				return out
			}
			d.warn("fetch recommendations", "feed", feed, "error", err)
			continue
		}
		out = append(out, recs...)
	}
	d.info("substack recommendations", "feeds", len(feeds), "found", len(out))
	return out
}

type domainTally struct {
	count  int
	points int
	titles []string
}

func (d *Discovery) mineStories(ctx context.Context) []domain.DiscoveredSource {
	if d.stories == nil {
		return nil
	}

	ignore := make(map[string]struct{}, len(d.settings.IgnoreDomains))
	for _, host := range d.settings.IgnoreDomains {
		ignore[strings.ToLower(host)] = struct{}{}
	}

	tallies := make(map[string]*domainTally)
	for page := 0; page < d.settings.Pages; page++ {
		stories, err := d.stories.TopStories(ctx, d.settings.MinPoints, d.settings.HitsPerPage, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			d.warn("mine stories", "page", page, "error", err)
			continue
		}
		for _, story := range stories {
			host := hostOf(story.URL)
			if len(host) < minDomainLength {
				continue
			}
			if _, ok := ignore[host]; ok {
				continue
			}
			t, ok := tallies[host]
			if !ok {
				t = &domainTally{}
				tallies[host] = t
			}
			t.count++
			t.points += story.Points
			if len(t.titles) < maxSampleTitles {
				t.titles = append(t.titles, story.Title)
			}
		}
	}

	var out []domain.DiscoveredSource
	for host, t := range tallies {
		if t.count < d.settings.MinDomainHits {
			continue
		}
		out = append(out, domain.DiscoveredSource{
			Domain:       host,
			Origin:       domain.OriginHNMining,
			HNCount:      t.count,
			HNAvgPoints:  math.Round(float64(t.points)/float64(t.count)*10) / 10,
			SampleTitles: t.titles,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HNCount != out[j].HNCount {
			return out[i].HNCount > out[j].HNCount
		}
		return out[i].Domain < out[j].Domain
	})
	d.info("mined story domains", "domains", len(tallies), "recurring", len(out))
	return out
}

func (d *Discovery) feedFor(ctx context.Context, host string) string {
	if strings.Contains(host, "substack.com") {
		return "https://" + host + "/feed"
	}
	if d.prober == nil {
		return ""
	}
	return d.prober.Probe(ctx, host)
}

func (d *Discovery) promote(ctx context.Context, ledger *domain.DiscoveryLedger, known map[string]struct{}) []domain.PromotedFeed {
	if d.settings.Promote <= 0 {
		return nil
	}

	var promoted []domain.PromotedFeed
	for _, src := range Ranked(ledger.Sources) {
		if len(promoted) >= d.settings.Promote {
			break
		}
		if src.FeedURL == "" {
			continue
		}
		if _, ok := known[src.Domain]; ok {
			continue
		}
		if d.verifier != nil {
			if err := d.verifier.Verify(ctx, src.FeedURL); err != nil {
				d.debug("feed rejected", "url", src.FeedURL, "error", err)
				continue
			}
		}

		feed := domain.PromotedFeed{
			Name:     src.Name,
			URL:      src.FeedURL,
			Domain:   src.Domain,
			Category: promotedCategory,
			AddedAt:  d.clock.Now(),
		}
		ledger.Promoted = append(ledger.Promoted, feed)
		known[src.Domain] = struct{}{}
		promoted = append(promoted, feed)
		d.info("promoted feed", "name", feed.Name, "url", feed.URL)
	}
	return promoted
}

func (d *Discovery) report(ctx context.Context, result DiscoveryResult, ranked []domain.DiscoveredSource) {
	if d.notifier == nil || d.settings.ReviewerChatID == "" {
		return
	}
	if limit := d.settings.ReportSize; limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if err := d.notifier.Deliver(ctx, d.settings.ReviewerChatID, discoveryReport(result, ranked)); err != nil {
		d.warn("send discovery report", "error", err)
	}
}

// Ranked returns a copy of sources ordered by descending rank.
func Ranked(sources []domain.DiscoveredSource) []domain.DiscoveredSource {
	out := append([]domain.DiscoveredSource(nil), sources...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank() > out[j].Rank()
	})
	return out
}

func hostOf(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func nameFromHost(host string) string {
	label := strings.TrimSuffix(host, substackSuffix)
	if i := strings.IndexByte(label, '.'); i > 0 {
		label = label[:i]
	}
	return cases.Title(language.English).String(strings.ReplaceAll(label, "-", " "))
}

func (d *Discovery) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}

func (d *Discovery) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *Discovery) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
