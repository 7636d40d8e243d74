package domain

import "time"

// DiscoveryOrigin tells how a source candidate was found.
type DiscoveryOrigin string

const (
	OriginSubstack DiscoveryOrigin = "substack_recommendation"
	OriginHNMining DiscoveryOrigin = "hn_mining"
)

// DiscoveredSource is a publication that may be worth adding to the feed list.
type DiscoveredSource struct {
	Name           string          `json:"name"`
	Domain         string          `json:"domain"`
	FeedURL        string          `json:"url,omitempty"`
	Origin         DiscoveryOrigin `json:"source_type"`
	DiscoveredFrom string          `json:"discovered_from,omitempty"`
	HNCount        int             `json:"hn_count,omitempty"`
	HNAvgPoints    float64         `json:"hn_avg_points,omitempty"`
	SampleTitles   []string        `json:"sample_titles,omitempty"`
	DiscoveredAt   time.Time       `json:"discovered_at"`
}

// Rank orders discoveries: substack recommendations and HN traction count, a working feed counts most.
func (s DiscoveredSource) Rank() float64 {
	var score float64
	if s.Origin == OriginSubstack {
		score += 50
	}
	score += float64(s.HNCount) * 10
	score += s.HNAvgPoints * 0.1
	if s.FeedURL != "" {
		score += 20
	}
	return score
}

// PromotedFeed is a discovered feed added to the polling list.
type PromotedFeed struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Domain   string    `json:"domain"`
	Category string    `json:"category"`
	AddedAt  time.Time `json:"added_at"`
}

// DiscoveryLedger is the persisted discovery state.
type DiscoveryLedger struct {
	Sources     []DiscoveredSource `json:"sources"`
	SeenDomains []string           `json:"seen_domains"`
	Promoted    []PromotedFeed     `json:"promoted"`
	UpdatedAt   time.Time          `json:"last_updated"`
}

// Story is a popular link-aggregator story used to mine new domains.
type Story struct {
	Title  string
	URL    string
	Points int
}
