package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"BrainCandy/internal/domain"
	"BrainCandy/internal/scanner"
)

const untitled = "Untitled"

// RSSScanner reads RSS and Atom feeds with gofeed.
type RSSScanner struct {
	parser    *gofeed.Parser
	redirects scanner.Redirects
	logger    *slog.Logger
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner builds a scanner; a nil client gets a 15s timeout.
func NewRSSScanner(client *http.Client, redirects scanner.Redirects, logger *slog.Logger) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "BrainCandy/1.0 (+https://t.me/candyforthebrain)"
	return &RSSScanner{parser: parser, redirects: redirects, logger: logger}
}

// Name returns the strategy name used in site configs.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan returns the newest req.Limit entries of the feed at req.URL.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Candidate, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("site %s has no feed url", req.SiteName)
	}

	feed, err := s.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.URL, err)
	}

	items := feed.Items
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			if s.logger != nil {
				s.logger.Debug("entry without link", "site", req.SiteName, "title", item.Title)
			}
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = untitled
		}

		candidates = append(candidates, domain.Candidate{
			Title:  title,
			Link:   s.redirects.Apply(link),
			Source: req.SiteName,
		})
	}
	return candidates, nil
}
