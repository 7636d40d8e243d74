package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
)

type fakeRecommendations struct {
	byFeed map[string][]domain.DiscoveredSource
	asked  []string
}

func (f *fakeRecommendations) Recommendations(_ context.Context, feedURL string) ([]domain.DiscoveredSource, error) {
	f.asked = append(f.asked, feedURL)
	recs, ok := f.byFeed[feedURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return recs, nil
}

type fakeStories struct {
	pages map[int][]domain.Story
}

func (f fakeStories) TopStories(_ context.Context, _, _, page int) ([]domain.Story, error) {
	return f.pages[page], nil
}

type fakeProber map[string]string

func (f fakeProber) Probe(_ context.Context, host string) string {
	return f[host]
}

type fakeVerifier map[string]bool

func (f fakeVerifier) Verify(_ context.Context, feedURL string) error {
	if f[feedURL] {
		return nil
	}
	return errors.New("not a feed")
}

func TestDiscoveryRunFindsRanksAndPromotes(t *testing.T) {
	t.Parallel()

	sites := []config.SiteConfig{
		{Name: "Astral Codex Ten", URL: "https://astralcodexten.substack.com/feed"},
		{Name: "Noahpinion", URL: "https://noahpinion.substack.com/feed"},
		{Name: "Dan Luu", URL: "https://danluu.com/atom.xml"},
	}
	recs := &fakeRecommendations{byFeed: map[string][]domain.DiscoveredSource{
		"https://astralcodexten.substack.com/feed": {
			{Name: "Noahpinion", Domain: "noahpinion.substack.com", FeedURL: "https://noahpinion.substack.com/feed", Origin: domain.OriginSubstack},
			{Name: "", Domain: "construction-physics.substack.com", FeedURL: "https://construction-physics.substack.com/feed", Origin: domain.OriginSubstack},
		},
	}}
	stories := fakeStories{pages: map[int][]domain.Story{
		0: {
			{Title: "Essay one", URL: "https://www.worksinprogress.co/one", Points: 300},
			{Title: "Essay two", URL: "https://worksinprogress.co/two", Points: 201},
			{Title: "Again", URL: "https://danluu.com/again", Points: 500},
			{Title: "Social", URL: "https://github.com/x/y", Points: 900},
		},
		1: {
			{Title: "Once", URL: "https://oneoff.example/a", Points: 400},
			{Title: "Again 2", URL: "https://danluu.com/again2", Points: 500},
			{Title: "Tiny", URL: "https://a.io/1", Points: 200},
			{Title: "Tiny 2", URL: "https://a.io/2", Points: 200},
		},
	}}

	repo := newMemRepo()
	repo.discovery.SeenDomains = []string{"old.substack.com"}
	notifier := &fakeNotifier{}
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	d := NewDiscovery(DiscoveryDeps{
		Recommendations: recs,
		Stories:         stories,
		Prober:          fakeProber{"worksinprogress.co": "https://worksinprogress.co/feed"},
		Verifier:        fakeVerifier{"https://construction-physics.substack.com/feed": true},
		Repository:      repo,
		Notifier:        notifier,
		Clock:           &fixedClock{now: now},
		Sites:           sites,
		Settings: DiscoverySettings{
			ReviewerChatID: reviewer,
			Pages:          2,
			MinDomainHits:  2,
			MaxSubstacks:   20,
			Promote:        3,
			ReportSize:     5,
			IgnoreDomains:  []string{"github.com"},
		},
	})

	result, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"https://astralcodexten.substack.com/feed", "https://noahpinion.substack.com/feed"}, recs.asked)
	assert.Equal(t, 2, result.New)

	ledger := repo.discovery
	require.Len(t, ledger.Sources, 2)
	assert.Equal(t, "Construction Physics", ledger.Sources[0].Name)
	assert.Equal(t, now, ledger.Sources[0].DiscoveredAt)

	mined := ledger.Sources[1]
	assert.Equal(t, "worksinprogress.co", mined.Domain)
	assert.Equal(t, domain.OriginHNMining, mined.Origin)
	assert.Equal(t, 2, mined.HNCount)
	assert.InDelta(t, 250.5, mined.HNAvgPoints, 1e-9)
	assert.Equal(t, "https://worksinprogress.co/feed", mined.FeedURL)
	assert.Equal(t, "Worksinprogress", mined.Name)

	assert.Equal(t, []string{"old.substack.com", "construction-physics.substack.com", "worksinprogress.co"}, ledger.SeenDomains)

	require.Len(t, result.Promoted, 1)
	assert.Equal(t, "https://construction-physics.substack.com/feed", ledger.Promoted[0].URL)
	assert.Equal(t, now, ledger.UpdatedAt)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, reviewer, notifier.sent[0].recipient)
	assert.Contains(t, notifier.sent[0].text, "Construction Physics")
}

func TestDiscoverySkipsKnownDomainsOnRerun(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	repo.discovery = domain.DiscoveryLedger{
		Promoted: []domain.PromotedFeed{{Name: "WiP", URL: "https://worksinprogress.co/feed", Domain: "worksinprogress.co"}},
	}
	stories := fakeStories{pages: map[int][]domain.Story{0: {
		{Title: "One", URL: "https://worksinprogress.co/one", Points: 300},
		{Title: "Two", URL: "https://worksinprogress.co/two", Points: 300},
	}}}

	result, err := NewDiscovery(DiscoveryDeps{
		Stories:    stories,
		Repository: repo,
		Settings:   DiscoverySettings{Pages: 1, MinDomainHits: 2, Promote: 3},
	}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.New)
	assert.Empty(t, result.Promoted)
	assert.Len(t, repo.discovery.Promoted, 1)
}

func TestRankedOrdersByRank(t *testing.T) {
	t.Parallel()

	sources := []domain.DiscoveredSource{
		{Domain: "mined.example", Origin: domain.OriginHNMining, HNCount: 3, HNAvgPoints: 200},
		{Domain: "rec.substack.com", Origin: domain.OriginSubstack, FeedURL: "https://rec.substack.com/feed"},
		{Domain: "nofeed.example", Origin: domain.OriginHNMining, HNCount: 2, HNAvgPoints: 100},
	}
	ranked := Ranked(sources)
	assert.Equal(t, "rec.substack.com", ranked[0].Domain)
	assert.Equal(t, "mined.example", ranked[1].Domain)
	assert.Equal(t, "nofeed.example", ranked[2].Domain)
	assert.Equal(t, "mined.example", sources[0].Domain)
}
