package filter

import (
	"strings"

	"BrainCandy/internal/config"
	"BrainCandy/internal/normalize"
)

// Reason names the rule that blocked a candidate.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNeverResurface Reason = "never_resurface"
	ReasonDomain         Reason = "blocked_domain"
	ReasonKeyword        Reason = "blocked_keyword"
	ReasonPremium        Reason = "premium_marker"
)

// Filter rejects candidates by blocklists. It has no side effects.
type Filter struct {
	neverResurface map[string]struct{}
	domains        []string
	keywords       []string
	premium        []string
}

// New prepares the lowercase rule sets from configuration.
func New(cfg config.FilterConfig) *Filter {
	f := &Filter{
		neverResurface: make(map[string]struct{}, len(cfg.NeverResurface)),
		domains:        lowerAll(cfg.BlockedDomains),
		keywords:       lowerAll(cfg.BlockedKeywords),
		premium:        lowerAll(cfg.PremiumMarkers),
	}
	for _, link := range cfg.NeverResurface {
		f.neverResurface[normalize.URL(link)] = struct{}{}
	}
	return f
}

// Blocked reports whether the candidate must be dropped.
func (f *Filter) Blocked(link, title string) bool {
	blocked, _ := f.Check(link, title)
	return blocked
}

// Check is Blocked with the first matching rule.
func (f *Filter) Check(link, title string) (bool, Reason) {
	if f == nil {
		return false, ReasonNone
	}

	if _, ok := f.neverResurface[normalize.URL(link)]; ok {
		return true, ReasonNeverResurface
	}

	lowerLink := strings.ToLower(link)
	if containsAny(lowerLink, f.domains) {
		return true, ReasonDomain
	}

	lowerTitle := strings.ToLower(title)
	if containsAny(lowerTitle, f.keywords) {
		return true, ReasonKeyword
	}
	if containsAny(lowerTitle, f.premium) {
		return true, ReasonPremium
	}

	return false, ReasonNone
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
