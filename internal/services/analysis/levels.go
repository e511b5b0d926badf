package analysis

import (
	"sort"

	"TradePulse/internal/domain/models"
)

const (
	minHistogramBins = 10
	maxHistogramBins = 50
)

// LevelFinder derives support/resistance levels from the highs and lows of
// a window via histogram clustering. It keeps the last valid pair per
// instance as the first-choice fallback; that cache is the only state.
type LevelFinder struct {
	minPoints int
	minGapPct float64

	lastSupport    float64
	lastResistance float64
}

// NewLevelFinder creates a finder. minPoints is the trend minimum; Compute
// requires twice that many points. Non-positive minGapPct falls back to the
// default 0.001.
func NewLevelFinder(minPoints int, minGapPct float64) *LevelFinder {
	if minPoints < 2 {
		minPoints = 2
	}
	if minGapPct <= 0 {
		minGapPct = 0.001
	}
	return &LevelFinder{minPoints: minPoints, minGapPct: minGapPct}
}

// Compute clusters the window's highs and lows into price levels and picks
// the nearest level on each side of currentPrice. Windows that are too
// short, one-sided, or too tightly clustered yield the fallback.
func (f *LevelFinder) Compute(window []models.PricePoint, currentPrice float64) models.LevelSet {
	if len(window) < 2*f.minPoints {
		return f.fallback(window, currentPrice)
	}

	values := make([]float64, 0, 2*len(window))
	for _, p := range window {
		values = append(values, p.High, p.Low)
	}

	levels := clusterLevels(values, currentPrice)
	if len(levels) == 0 {
		return f.fallback(window, currentPrice)
	}

	var below, above []float64
	for _, lv := range levels {
		if lv < currentPrice {
			below = append(below, lv)
		} else if lv > currentPrice {
			above = append(above, lv)
		}
	}
	if len(below) == 0 || len(above) == 0 {
		return f.fallback(window, currentPrice)
	}

	sort.Float64s(below)
	sort.Float64s(above)
	support := below[len(below)-1]
	resistance := above[0]

	if support <= 0 || (resistance-support)/support < f.minGapPct {
		return f.fallback(window, currentPrice)
	}

	f.lastSupport = support
	f.lastResistance = resistance

	return models.LevelSet{
		Support:              support,
		Resistance:           resistance,
		CandidateSupports:    below,
		CandidateResistances: above,
	}
}

// clusterLevels histograms the values and returns the centers of bins whose
// count reaches the mean bin count ("peaks").
func clusterLevels(values []float64, currentPrice float64) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return nil
	}

	// Resolve the observed range at roughly 0.1% of the current price per
	// bin, bounded so a narrow range still gets >= 10 bins and a wide one
	// cannot degenerate into noise.
	bins := minHistogramBins
	if currentPrice > 0 {
		if n := int((hi - lo) / (currentPrice * 0.001)); n > bins {
			bins = n
		}
	}
	if bins > maxHistogramBins {
		bins = maxHistogramBins
	}

	width := (hi - lo) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}

	mean := float64(len(values)) / float64(bins)
	out := make([]float64, 0, bins)
	for i, c := range counts {
		if float64(c) >= mean {
			out = append(out, lo+(float64(i)+0.5)*width)
		}
	}
	return out
}

// fallback applies the documented degradation chain: last valid pair, then
// a tight band around the current price, then zeros for an empty window.
func (f *LevelFinder) fallback(window []models.PricePoint, currentPrice float64) models.LevelSet {
	if f.lastSupport > 0 && f.lastResistance > 0 {
		return models.LevelSet{Support: f.lastSupport, Resistance: f.lastResistance, Fallback: true}
	}
	if len(window) > 0 && currentPrice > 0 {
		return models.LevelSet{
			Support:    currentPrice * 0.995,
			Resistance: currentPrice * 1.005,
			Fallback:   true,
		}
	}
	return models.LevelSet{Fallback: true}
}

// Last returns the cached last valid support/resistance pair, if any.
func (f *LevelFinder) Last() (support, resistance float64, ok bool) {
	if f.lastSupport > 0 && f.lastResistance > 0 {
		return f.lastSupport, f.lastResistance, true
	}
	return 0, 0, false
}
