package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/reputation"
)

func testScorer() *Scorer {
	return New(config.Default().Scoring)
}

func TestScoreBaseFromReputation(t *testing.T) {
	t.Parallel()

	s := testScorer()
	rep := reputation.Scores{"Trusted": 0.8}

	assert.InDelta(t, 0.8, s.Score(domain.Candidate{Title: "Essay", Source: "Trusted"}, rep), 1e-9)
	assert.InDelta(t, 0.5, s.Score(domain.Candidate{Title: "Essay", Source: "Unknown"}, rep), 1e-9)
}

func TestTitlePenaltyAppliesOnce(t *testing.T) {
	t.Parallel()

	s := testScorer()
	c := domain.Candidate{Title: "Open Thread: weekly top roundup and reading list", Source: "X"}

	assert.InDelta(t, 0.2, s.Score(c, reputation.Scores{}), 1e-9)
}

func TestPopularityTiers(t *testing.T) {
	t.Parallel()

	s := testScorer()

	cases := []struct {
		points int
		want   float64
	}{
		{0, 0.5},
		{149, 0.5},
		{150, 0.6},
		{299, 0.6},
		{300, 0.7},
		{500, 0.8},
		{5000, 0.8},
	}
	for _, tc := range cases {
		c := domain.Candidate{Title: "Essay", Source: "HN", Points: tc.points}
		assert.InDelta(t, tc.want, s.Score(c, nil), 1e-9, "points %d", tc.points)
	}
}

func TestPreferredBonusNeedsPopularity(t *testing.T) {
	t.Parallel()

	s := testScorer()

	withPoints := domain.Candidate{Title: "Essay", Source: "HN", Points: 120, Preferred: true}
	withoutPoints := domain.Candidate{Title: "Essay", Source: "HN", Preferred: true}

	assert.InDelta(t, 0.65, s.Score(withPoints, nil), 1e-9)
	assert.InDelta(t, 0.5, s.Score(withoutPoints, nil), 1e-9)
}

func TestScoreIsClamped(t *testing.T) {
	t.Parallel()

	s := testScorer()
	allPatterns := strings.Join(config.Default().Scoring.BadTitlePatterns, " ")

	low := s.Score(domain.Candidate{Title: allPatterns, Source: "Bad"}, reputation.Scores{"Bad": 0})
	high := s.Score(domain.Candidate{Title: "Essay", Source: "Good", Points: 900, Preferred: true}, reputation.Scores{"Good": 1})
	missing := s.Score(domain.Candidate{Title: allPatterns, Source: "Nobody"}, nil)

	assert.Equal(t, 0.0, low)
	assert.Equal(t, 1.0, high)
	assert.GreaterOrEqual(t, missing, 0.0)
	assert.LessOrEqual(t, missing, 1.0)
}

func TestOpenThreadIsPenalizedForAnyReputation(t *testing.T) {
	t.Parallel()

	s := testScorer()
	c := domain.Candidate{Title: "Open Thread #50", Source: "X"}

	for _, rep := range []float64{0, 0.25, 0.5, 0.74, 1} {
		score := s.Score(c, reputation.Scores{"X": rep})
		assert.InDelta(t, clamp(rep-0.3), score, 1e-9, "reputation %.2f", rep)
	}
	assert.False(t, s.Admits(s.Score(c, reputation.Scores{"X": 0.74})))
	assert.False(t, s.Admits(s.Score(c, nil)))
}

func TestAdmitsAtThreshold(t *testing.T) {
	t.Parallel()

	s := testScorer()
	assert.True(t, s.Admits(0.45))
	assert.False(t, s.Admits(0.4499))
	assert.InDelta(t, 0.45, s.Threshold(), 1e-9)
}
