package reputation

import "BrainCandy/internal/domain"

// Neutral is the trust assigned to sources without feedback.
const Neutral = 0.5

// Scores maps a source name to its share of good verdicts.
type Scores map[string]float64

// Of returns the score for source, Neutral when it has no feedback.
func (s Scores) Of(source string) float64 {
	if v, ok := s[source]; ok {
		return v
	}
	return Neutral
}

// Compute derives source trust from the whole feedback log.
// Sources with no good or bad verdict are absent from the result.
func Compute(log []domain.FeedbackRecord) Scores {
	type tally struct{ good, bad int }

	tallies := make(map[string]*tally)
	for _, rec := range log {
		t, ok := tallies[rec.Source]
		if !ok {
			t = &tally{}
			tallies[rec.Source] = t
		}
		switch rec.Rating {
		case domain.RatingGood:
			t.good++
		case domain.RatingBad:
			t.bad++
		}
	}

	scores := make(Scores, len(tallies))
	for source, t := range tallies {
		if total := t.good + t.bad; total > 0 {
			scores[source] = float64(t.good) / float64(total)
		}
	}
	return scores
}

// Stats summarizes the feedback log.
type Stats struct {
	Good    int `json:"good"`
	Bad     int `json:"bad"`
	Sources int `json:"sources"`
}

// Total is the number of rated entries.
func (s Stats) Total() int {
	return s.Good + s.Bad
}

// Summarize counts verdicts and distinct rated sources.
func Summarize(log []domain.FeedbackRecord) Stats {
	var stats Stats
	sources := make(map[string]struct{})
	for _, rec := range log {
		switch rec.Rating {
		case domain.RatingGood:
			stats.Good++
		case domain.RatingBad:
			stats.Bad++
		default:
			continue
		}
		sources[rec.Source] = struct{}{}
	}
	stats.Sources = len(sources)
	return stats
}

// Approved returns the identity keys of links rated good, using key to normalize them.
func Approved(log []domain.FeedbackRecord, key func(string) string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, rec := range log {
		if rec.Rating == domain.RatingGood {
			out[key(rec.URL)] = struct{}{}
		}
	}
	return out
}
