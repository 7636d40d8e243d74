package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"BrainCandy/internal/domain"
	"BrainCandy/internal/ports"
)

const maxNameLength = 50

// SubstackScraper reads the public recommendations page of a Substack newsletter.
type SubstackScraper struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ ports.RecommendationSource = (*SubstackScraper)(nil)

// NewSubstackScraper wires an HTTP client; a nil client gets a 10s timeout.
func NewSubstackScraper(client *http.Client, userAgent string, logger *slog.Logger) *SubstackScraper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SubstackScraper{client: client, userAgent: userAgent, logger: logger}
}

// Recommendations returns the newsletters recommended by the publication
// behind feedURL. Names longer than 50 characters are left empty.
func (s *SubstackScraper) Recommendations(ctx context.Context, feedURL string) ([]domain.DiscoveredSource, error) {
	base, err := url.Parse(feedURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid feed url %q", feedURL)
	}
	origin := strings.TrimPrefix(strings.ToLower(base.Hostname()), "www.")
	page := url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/recommendations"}

	doc, err := s.fetchDocument(ctx, page.String())
	if err != nil {
		return nil, err
	}

	var out []domain.DiscoveredSource
	unique := map[string]struct{}{origin: {}}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if !strings.Contains(host, "substack.com") || u.Path == "/recommendations" {
			return
		}
		if _, ok := unique[host]; ok {
			return
		}
		unique[host] = struct{}{}

		name := strings.Join(strings.Fields(a.Text()), " ")
		if utf8.RuneCountInString(name) > maxNameLength {
			name = ""
		}
		out = append(out, domain.DiscoveredSource{
			Name:           name,
			Domain:         host,
			FeedURL:        "https://" + host + "/feed",
			Origin:         domain.OriginSubstack,
			DiscoveredFrom: origin,
		})
	})

	if s.logger != nil {
		s.logger.Debug("substack recommendations", "from", origin, "count", len(out))
	}
	return out, nil
}

func (s *SubstackScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
