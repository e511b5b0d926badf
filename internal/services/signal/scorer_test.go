package signal

import (
	"testing"

	"TradePulse/internal/domain/models"
)

func TestScoreStaysBounded(t *testing.T) {
	s := NewScorer(0, 0)

	cases := []struct {
		trend  models.TrendResult
		profit float64
		conf   float64
	}{
		{models.TrendResult{Direction: models.TrendUp, Strength: 1}, 10, 1},
		{models.TrendResult{Direction: models.TrendDown, Strength: 0}, 0, 0},
		{models.TrendResult{Direction: models.TrendNeutral, Strength: 0.5}, 1.5, 0.5},
	}
	for _, tc := range cases {
		got := s.Score(tc.trend, tc.profit, tc.conf)
		if got < 0 || got > 10 {
			t.Errorf("Score(%+v, %v, %v) = %v, out of range", tc.trend, tc.profit, tc.conf, got)
		}
	}
}

func TestScoreStrongTrendRegime(t *testing.T) {
	s := NewScorer(0, 0)

	trend := models.TrendResult{Direction: models.TrendUp, Strength: 0.8}
	if got := s.Score(trend, 2.0, 0.9); got != 8.9 {
		t.Fatalf("Score = %v, want 8.9", got)
	}
}

func TestScoreHighProfitRegime(t *testing.T) {
	s := NewScorer(0, 0)

	trend := models.TrendResult{Direction: models.TrendUp, Strength: 0.1}
	if got := s.Score(trend, 2.0, 0.5); got != 6.1 {
		t.Fatalf("Score = %v, want 6.1", got)
	}
}

func TestScoreDefaultRegime(t *testing.T) {
	s := NewScorer(0, 0)

	trend := models.TrendResult{Direction: models.TrendDown, Strength: 0.1}
	if got := s.Score(trend, 0.5, 0); got != 3.1 {
		t.Fatalf("Score = %v, want 3.1", got)
	}
}

func TestScoreAlignmentBonusClamps(t *testing.T) {
	s := NewScorer(0, 0)

	trend := models.TrendResult{Direction: models.TrendUp, Strength: 0.4}
	if got := s.Score(trend, 2.5, 0.9); got != 10 {
		t.Fatalf("Score = %v, want 10 after bonus and clamp", got)
	}
}
