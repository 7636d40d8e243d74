package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"BrainCandy/internal/config"
)

func testFilter() *Filter {
	return New(config.FilterConfig{
		NeverResurface:  []string{"https://nadia.xyz/basic", "https://pmillerd.com/mediocre/"},
		BlockedDomains:  []string{"nytimes.com", "Stratechery.com"},
		BlockedKeywords: []string{"sponsored", "[ad]"},
		PremiumMarkers:  []string{"paid subscribers", "members only"},
	})
}

func TestCheckOrder(t *testing.T) {
	t.Parallel()

	f := testFilter()

	cases := []struct {
		name   string
		link   string
		title  string
		reason Reason
	}{
		{"never resurface beats domain", "https://nadia.xyz/basic", "Sponsored", ReasonNeverResurface},
		{"domain", "https://www.NYTimes.com/2025/01/01/opinion.html", "Fine", ReasonDomain},
		{"domain case in config", "https://stratechery.com/2025/aggregators", "Fine", ReasonDomain},
		{"keyword", "https://example.com/p", "A SPONSORED look", ReasonKeyword},
		{"premium", "https://example.com/p", "For Paid Subscribers: weekly notes", ReasonPremium},
		{"clean", "https://example.com/p", "On Writing", ReasonNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			blocked, reason := f.Check(tc.link, tc.title)
			assert.Equal(t, tc.reason, reason)
			assert.Equal(t, tc.reason != ReasonNone, blocked)
		})
	}
}

func TestNeverResurfaceIgnoresCasingAndTracking(t *testing.T) {
	t.Parallel()

	f := testFilter()

	assert.True(t, f.Blocked("http://NADIA.xyz/basic/?utm_source=twitter#top", "The Basic"))
	assert.True(t, f.Blocked("https://pmillerd.com/mediocre?ref=hn", ""))
	assert.False(t, f.Blocked("https://nadia.xyz/other", "The Basic"))
}

func TestNilFilterBlocksNothing(t *testing.T) {
	t.Parallel()

	var f *Filter
	assert.False(t, f.Blocked("https://nytimes.com", "sponsored"))
}
