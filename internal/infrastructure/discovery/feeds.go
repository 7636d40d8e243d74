package discovery

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"BrainCandy/internal/ports"
)

// FeedProber finds a site's feed by trying common paths with HEAD requests.
type FeedProber struct {
	client    *http.Client
	patterns  []string
	userAgent string
}

var _ ports.FeedProber = (*FeedProber)(nil)

// NewFeedProber wires an HTTP client and the paths to try, in order.
func NewFeedProber(client *http.Client, patterns []string, userAgent string) *FeedProber {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &FeedProber{client: client, patterns: patterns, userAgent: userAgent}
}

// Probe returns the first https://host+pattern answering 200, or "".
func (p *FeedProber) Probe(ctx context.Context, host string) string {
	for _, pattern := range p.patterns {
		candidate := "https://" + host + pattern
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, candidate, nil)
		if err != nil {
			continue
		}
		if p.userAgent != "" {
			req.Header.Set("User-Agent", p.userAgent)
		}
		resp, err := p.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ""
			}
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return candidate
		}
	}
	return ""
}

// FeedVerifier confirms a feed parses before it is promoted.
type FeedVerifier struct {
	parser *gofeed.Parser
}

var _ ports.FeedVerifier = (*FeedVerifier)(nil)

// NewFeedVerifier wires gofeed with the given client.
func NewFeedVerifier(client *http.Client, userAgent string) *FeedVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &FeedVerifier{parser: parser}
}

// Verify fails when the feed cannot be fetched or has no entries.
func (v *FeedVerifier) Verify(ctx context.Context, feedURL string) error {
	feed, err := v.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	if len(feed.Items) == 0 {
		return fmt.Errorf("feed %s has no entries", feedURL)
	}
	return nil
}
