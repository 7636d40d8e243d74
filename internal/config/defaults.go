package config

import (
	"time"

	"BrainCandy/internal/domain"
)

// Default returns the built-in configuration; configs/braincandy.yaml carries the full feed list.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Telegram: TelegramConfig{
			APIBase:     "https://api.telegram.org",
			Timeout:     10 * time.Second,
			PollTimeout: 5,
		},
		Storage: StorageConfig{
			Driver: DriverJSON,
			Path:   "data",
			DSN:    "data/braincandy.db",
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "braincandy:"},
		},
		Scheduler: SchedulerConfig{
			Timezone:         defaultTimezone,
			TrainingSpec:     "@every 30s",
			ProductionSpec:   "@every 10m",
			PostingSpec:      "0 9-18 * * *",
			DiscoverySpec:    "@weekly",
			PostingStartHour: 9,
			PostingEndHour:   18,
		},
		Curation: CurationConfig{
			ReviewBatchSize:    5,
			MaxQueueSize:       50,
			MaxPerSource:       2,
			LowVolumeThreshold: 20,
			PostsPerCycle:      3,
			ProductionFallback: 3,
			DrainCount:         1,
			FeedEntryLimit:     10,
			ShuffleFeeds:       true,
			SourceDelay:        300 * time.Millisecond,
			SendDelay:          time.Second,
			PostDelay:          2 * time.Second,
		},
		Scoring: ScoringConfig{
			Threshold:    0.45,
			TitlePenalty: 0.3,
			BadTitlePatterns: []string{
				"roundup", "reading list", "classifieds", "open thread",
				"discussion post", "weekly top", "ainews", "[ainews]",
				"trade alert", "earnings,", "personal day",
			},
			PopularityTiers: []PopularityTier{
				{MinPoints: 500, Bonus: 0.3},
				{MinPoints: 300, Bonus: 0.2},
				{MinPoints: 150, Bonus: 0.1},
			},
			PreferredBonus: 0.15,
		},
		Filters: FilterConfig{
			NeverResurface: []string{
				"https://catherineshannon.substack.com/p/everyone-is-numbing-out",
				"https://reducibleerrors.com/prediction-markets/",
				"https://telah.vc/hyperstitions",
				"https://pmillerd.com/mediocre/",
				"https://welf.substack.com/p/what-does-it-take-for-wisdom-to-win",
				"https://nadia.xyz/basic",
			},
			BlockedDomains: []string{
				"nytimes.com", "wsj.com", "ft.com", "economist.com",
				"cnn.com", "foxnews.com", "msnbc.com", "bbc.com", "bbc.co.uk",
				"theinformation.com", "businessinsider.com",
				"huffpost.com", "buzzfeed.com", "forbes.com", "fortune.com", "bloomberg.com",
				"theverge.com", "techcrunch.com", "wired.com", "arstechnica.com",
				"washingtonpost.com", "politico.com", "thehill.com",
				"reuters.com", "apnews.com", "vice.com", "vox.com",
				"mastodon.social", "twitter.com", "x.com",
				"reddit.com", "youtube.com", "linkedin.com", "facebook.com",
				"github.com", "gitlab.com", "stackoverflow.com",
				"arxiv.org", "wikipedia.org", "archive.org",
				"stratechery.com",
			},
			BlockedKeywords: []string{
				"sponsored", "paid partnership", "giveaway", "airdrop",
				"promoted", "advertisement", "[ad]", "partner content",
			},
			PremiumMarkers: []string{
				"trade alert", "premium", "members only", "subscriber only",
				"paid subscribers", "upgrade to read", "unlock this post",
				"for paying subscribers", "member-only",
			},
		},
		HackerNews: HackerNewsConfig{
			Enabled:     true,
			Endpoint:    "https://hn.algolia.com/api/v1/search",
			MinPoints:   100,
			MaxArticles: 30,
			HitsPerPage: 50,
			PreferredDomains: []string{
				"paulgraham.com", "danluu.com", "gwern.net", "lesswrong.com",
				"astralcodexten.substack.com", "slatestarcodex.com", "overcomingbias.com",
				"stratechery.com", "ben-evans.com", "eugenewei.com", "ribbonfarm.com",
				"waitbutwhy.com", "nadia.xyz", "vitalik.eth.limo", "patrickcollison.com",
				"marginalrevolution.com", "elidourado.com", "noahpinion.substack.com",
			},
			Timeout: 15 * time.Second,
		},
		Discovery: DiscoveryConfig{
			MinPoints:     150,
			Pages:         2,
			HitsPerPage:   100,
			MinDomainHits: 2,
			MaxSubstacks:  20,
			Promote:       3,
			ReportSize:    5,
			FeedPatterns:  []string{"/feed", "/rss", "/feed.xml", "/rss.xml", "/atom.xml"},
			IgnoreDomains: []string{
				"twitter.com", "x.com", "youtube.com", "reddit.com", "medium.com",
				"github.com", "news.ycombinator.com", "nytimes.com", "bloomberg.com",
				"arxiv.org", "wikipedia.org", "archive.org",
			},
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
			Timeout:   10 * time.Second,
		},
		Redirects: map[string]string{
			"vitalik.ca/": "vitalik.eth.limo/",
		},
		Sites: []SiteConfig{
			{Name: "Astral Codex Ten", Scanner: "rss", URL: "https://astralcodexten.substack.com/feed", Category: "Philosophy"},
			{Name: "Noahpinion", Scanner: "rss", URL: "https://noahpinion.substack.com/feed", Category: "Economics"},
			{Name: "Paul Graham", Scanner: "rss", URL: "http://www.aaronsw.com/2002/feeds/pgessays.rss", Category: "Essays"},
		},
		Canonical: []domain.CanonicalReading{
			{Title: "How to Do Great Work", URL: "https://paulgraham.com/greatwork.html", Author: "Paul Graham", Category: "Essays"},
			{Title: "The Gervais Principle", URL: "https://www.ribbonfarm.com/2009/10/07/the-gervais-principle-or-the-office-according-to-the-office/", Author: "Venkatesh Rao", Category: "Business"},
			{Title: "Crypto Cities", URL: "https://vitalik.eth.limo/general/2021/10/31/cities.html", Author: "Vitalik Buterin", Category: "Crypto"},
		},
	}
}
