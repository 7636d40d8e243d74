package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/filter"
	"BrainCandy/internal/ports"
	"BrainCandy/internal/scanner"
)

// SearchResponse is the subset of the Algolia search payload we read.
type SearchResponse struct {
	Hits    []Hit `json:"hits"`
	NbPages int   `json:"nbPages"`
}

// Hit is a single story from Algolia search results.
type Hit struct {
	ObjectID string `json:"objectID"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Points   int    `json:"points"`
}

// Client queries the HN Algolia search API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient builds a search client; a nil httpClient gets timeout from cfg.
func NewClient(cfg config.HackerNewsConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{endpoint: cfg.Endpoint, httpClient: httpClient}
}

// SearchStories returns stories with more than minPoints points.
func (c *Client) SearchStories(ctx context.Context, minPoints, hitsPerPage, page int) (SearchResponse, error) {
	if c.endpoint == "" {
		return SearchResponse{}, fmt.Errorf("hacker news search: %w", ports.ErrNotConfigured)
	}

	params := url.Values{}
	params.Set("tags", "story")
	params.Set("numericFilters", fmt.Sprintf("points>%d", minPoints))
	params.Set("hitsPerPage", strconv.Itoa(hitsPerPage))
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SearchResponse{}, fmt.Errorf("hacker news api error: %s", resp.Status)
	}

	var decoded SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return SearchResponse{}, fmt.Errorf("decode search response: %w", err)
	}
	return decoded, nil
}

// Source turns popular HN stories into candidates labelled "HN (Npt) via domain".
type Source struct {
	client      *Client
	minPoints   int
	maxArticles int
	hitsPerPage int
	preferred   []string
	redirects   scanner.Redirects
	filter      *filter.Filter
	logger      *slog.Logger
}

var _ ports.CandidateSource = (*Source)(nil)

// NewSource wires the search client with candidate limits.
func NewSource(client *Client, cfg config.HackerNewsConfig, redirects scanner.Redirects, logger *slog.Logger) *Source {
	preferred := make([]string, 0, len(cfg.PreferredDomains))
	for _, d := range cfg.PreferredDomains {
		preferred = append(preferred, strings.ToLower(d))
	}
	return &Source{
		client:      client,
		minPoints:   cfg.MinPoints,
		maxArticles: cfg.MaxArticles,
		hitsPerPage: cfg.HitsPerPage,
		preferred:   preferred,
		redirects:   redirects,
		logger:      logger,
	}
}

// WithFilter drops blocked stories before they count against maxArticles.
func (s *Source) WithFilter(f *filter.Filter) *Source {
	s.filter = f
	return s
}

// Fetch returns at most maxArticles linked, unblocked stories from the first
// result page.
func (s *Source) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	resp, err := s.client.SearchStories(ctx, s.minPoints, s.hitsPerPage, 0)
	if err != nil {
		return nil, err
	}

	var candidates []domain.Candidate
	for _, hit := range resp.Hits {
		if hit.URL == "" {
			continue
		}

		link := s.redirects.Apply(hit.URL)
		if s.filter.Blocked(link, hit.Title) {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Title:     hit.Title,
			Link:      link,
			Source:    fmt.Sprintf("HN (%dpt) via %s", hit.Points, Domain(link)),
			Points:    hit.Points,
			Preferred: s.isPreferred(link),
		})

		if s.maxArticles > 0 && len(candidates) >= s.maxArticles {
			break
		}
	}

	if s.logger != nil {
		s.logger.Info("fetched hacker news stories", "count", len(candidates))
	}
	return candidates, nil
}

func (s *Source) isPreferred(link string) bool {
	lower := strings.ToLower(link)
	for _, p := range s.preferred {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Domain returns the host of link without a leading "www.".
func Domain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

var _ ports.StoryIndex = (*Client)(nil)

// TopStories returns one page of linked stories as domain stories.
func (c *Client) TopStories(ctx context.Context, minPoints, hitsPerPage, page int) ([]domain.Story, error) {
	resp, err := c.SearchStories(ctx, minPoints, hitsPerPage, page)
	if err != nil {
		return nil, err
	}
	stories := make([]domain.Story, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.URL == "" {
			continue
		}
		stories = append(stories, domain.Story{Title: hit.Title, URL: hit.URL, Points: hit.Points})
	}
	return stories, nil
}
