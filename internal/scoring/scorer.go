package scoring

import (
	"sort"
	"strings"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/reputation"
)

// Scorer turns reputation and candidate signals into a score in [0,1].
type Scorer struct {
	threshold      float64
	titlePenalty   float64
	patterns       []string
	tiers          []config.PopularityTier
	preferredBonus float64
}

// New builds a scorer; tiers are checked from the highest threshold down.
func New(cfg config.ScoringConfig) *Scorer {
	tiers := append([]config.PopularityTier(nil), cfg.PopularityTiers...)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinPoints > tiers[j].MinPoints
	})

	patterns := make([]string, 0, len(cfg.BadTitlePatterns))
	for _, p := range cfg.BadTitlePatterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}

	return &Scorer{
		threshold:      cfg.Threshold,
		titlePenalty:   cfg.TitlePenalty,
		patterns:       patterns,
		tiers:          tiers,
		preferredBonus: cfg.PreferredBonus,
	}
}

// Score rates a candidate against the current source reputation.
func (s *Scorer) Score(c domain.Candidate, rep reputation.Scores) float64 {
	score := rep.Of(c.Source)

	if s.lowQualityTitle(c.Title) {
		score -= s.titlePenalty
	}

	if c.Points > 0 {
		score += s.popularityBonus(c.Points)
		if c.Preferred {
			score += s.preferredBonus
		}
	}

	return clamp(score)
}

// Admits reports whether score reaches the admission threshold.
func (s *Scorer) Admits(score float64) bool {
	return score >= s.threshold
}

// Threshold returns the admission threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

func (s *Scorer) lowQualityTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, p := range s.patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func (s *Scorer) popularityBonus(points int) float64 {
	for _, tier := range s.tiers {
		if points >= tier.MinPoints {
			return tier.Bonus
		}
	}
	return 0
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
