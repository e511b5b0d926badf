package signal

import (
	"math"

	"TradePulse/internal/domain/models"
)

// Scorer rates a candidate signal on a 0..10 scale by fusing trend
// credibility, trend strength, expected profit and forecast confidence.
// The weighting regime shifts toward whichever factor dominates the
// setup: strength for strong trends, profit for wide targets.
type Scorer struct {
	strongTrend float64
	highProfit  float64
}

// NewScorer creates a scorer with the regime boundaries for a strong
// trend and a high expected profit. Zero values fall back to 0.2 and 1.5.
func NewScorer(strongTrend, highProfit float64) *Scorer {
	if strongTrend <= 0 {
		strongTrend = 0.2
	}
	if highProfit <= 0 {
		highProfit = 1.5
	}
	return &Scorer{strongTrend: strongTrend, highProfit: highProfit}
}

// Score returns the quality score for a signal, rounded to one decimal.
func (s *Scorer) Score(trend models.TrendResult, expectedProfitPct, forecastConfidence float64) float64 {
	trendBase := 7.0
	if trend.Direction == models.TrendUp {
		trendBase = 8
	}

	strengthScore := math.Min(trend.Strength*30, 10)
	profitScore := profitScore(expectedProfitPct)
	forecastScore := forecastConfidence * 10

	var wTrend, wStrength, wProfit, wForecast float64
	switch {
	case trend.Strength > s.strongTrend:
		wTrend, wStrength, wProfit, wForecast = 0.2, 0.3, 0.2, 0.3
	case expectedProfitPct > s.highProfit:
		wTrend, wStrength, wProfit, wForecast = 0.2, 0.2, 0.3, 0.3
	default:
		wTrend, wStrength, wProfit, wForecast = 0.25, 0.25, 0.25, 0.25
	}

	score := trendBase*wTrend + strengthScore*wStrength + profitScore*wProfit + forecastScore*wForecast

	if trend.Strength > 0.3 && expectedProfitPct > 2 && forecastConfidence > 0.8 {
		score *= 1.2
	}

	if score < 0 {
		score = 0
	} else if score > 10 {
		score = 10
	}
	return math.Round(score*10) / 10
}

func profitScore(pct float64) float64 {
	switch {
	case pct <= 1:
		return pct * 5
	case pct <= 2:
		return 5 + (pct-1)*3
	default:
		return 8 + math.Min(pct-2, 2)
	}
}
