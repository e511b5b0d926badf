package analysis

import (
	"math"

	"TradePulse/internal/domain/models"
)

// TrendAnalyzer derives direction/strength/momentum metrics from a window.
// Pure function of the window: two calls over the same points return the
// same result.
type TrendAnalyzer struct {
	minPoints int
	epsilon   float64
}

// NewTrendAnalyzer creates an analyzer. minPoints below 2 and non-positive
// epsilon fall back to the defaults (2 / 0.001).
func NewTrendAnalyzer(minPoints int, epsilon float64) *TrendAnalyzer {
	if minPoints < 2 {
		minPoints = 2
	}
	if epsilon <= 0 {
		epsilon = 0.001
	}
	return &TrendAnalyzer{minPoints: minPoints, epsilon: epsilon}
}

// Analyze computes trend metrics for the window. Below minPoints it returns
// the explicit low-confidence default (neutral, strength 0), not an error.
func (a *TrendAnalyzer) Analyze(window []models.PricePoint) models.TrendResult {
	if len(window) < a.minPoints {
		return models.TrendResult{Direction: models.TrendNeutral}
	}

	closes := make([]float64, len(window))
	volumes := make([]float64, len(window))
	for i, p := range window {
		closes[i] = p.Close
		volumes[i] = p.Volume
	}

	priceChange := ratioChange(closes[len(closes)-1], closes[0])
	volumeTrend := ratioChange(volumes[len(volumes)-1], volumes[0])
	volatility := relativeStddev(closes)
	volumeConsistency := relativeStddev(volumes)
	momentum := priceChange * (1 + volumeTrend)

	res := models.TrendResult{
		PriceChangePct: priceChange,
		VolumeTrendPct: volumeTrend,
		Volatility:     volatility,
		Momentum:       momentum,
	}

	if math.Abs(priceChange) < a.epsilon {
		res.Direction = models.TrendNeutral
		return res
	}

	if priceChange > 0 {
		res.Direction = models.TrendUp
	} else {
		res.Direction = models.TrendDown
	}

	baseStrength := clamp(math.Abs(momentum)*10, 0, 1)
	volumeFactor := 1 - clamp(volumeConsistency, 0, 0.5)
	res.Strength = baseStrength * volumeFactor
	return res
}

// ratioChange computes (last-first)/first, guarding the zero denominator.
func ratioChange(last, first float64) float64 {
	if first == 0 {
		return 0
	}
	return (last - first) / first
}

// relativeStddev computes stddev(xs)/mean(xs), 0 when the mean is zero.
func relativeStddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq/float64(len(xs))) / mean
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
