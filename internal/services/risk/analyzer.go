package risk

import (
	"math"
	"sync"
	"time"
)

// Level buckets a risk score for presentation.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Assessment is the outcome of a risk evaluation: an averaged score in
// [0,1], its bucket and the per-factor breakdown.
type Assessment struct {
	Score           float64            `json:"score"`
	Level           Level              `json:"level"`
	Factors         map[string]float64 `json:"factors"`
	Recommendations []string           `json:"recommendations"`
}

type pricePoint struct {
	price float64
	at    time.Time
}

// Analyzer scores signals against recent market behaviour. It keeps a
// rolling 24h price history per instrument for the volatility factor.
type Analyzer struct {
	mu                  sync.RWMutex
	history             map[string][]pricePoint
	volatilityThreshold float64
	retention           time.Duration
	now                 func() time.Time
}

// NewAnalyzer creates an analyzer. volatilityThreshold is the relative
// stddev treated as maximum volatility risk; zero means 0.1.
func NewAnalyzer(volatilityThreshold float64) *Analyzer {
	if volatilityThreshold <= 0 {
		volatilityThreshold = 0.1
	}
	return &Analyzer{
		history:             make(map[string][]pricePoint),
		volatilityThreshold: volatilityThreshold,
		retention:           24 * time.Hour,
		now:                 time.Now,
	}
}

// Observe records a price observation for volatility tracking and drops
// history older than the retention horizon.
func (a *Analyzer) Observe(pair string, price float64, at time.Time) {
	if price <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.now().Add(-a.retention)
	kept := a.history[pair][:0]
	for _, p := range a.history[pair] {
		if p.at.After(cutoff) {
			kept = append(kept, p)
		}
	}
	a.history[pair] = append(kept, pricePoint{price: price, at: at})
}

// Assess evaluates a prospective position of the given notional size.
// recentSignals is the count of signals produced for the pair in the
// last 24 hours, used as the activity factor.
func (a *Analyzer) Assess(pair string, notional float64, recentSignals int) Assessment {
	factors := map[string]float64{
		"amount":     a.amountRisk(notional),
		"time":       a.timeRisk(a.now()),
		"activity":   activityRisk(recentSignals),
		"volatility": a.volatilityRisk(pair),
	}

	var total float64
	for _, v := range factors {
		total += v
	}
	score := total / float64(len(factors))

	return Assessment{
		Score:           score,
		Level:           levelFor(score),
		Factors:         factors,
		Recommendations: recommendations(factors),
	}
}

func (a *Analyzer) amountRisk(notional float64) float64 {
	return math.Min(notional/10.0, 1.0)
}

// timeRisk penalizes off-hours trading: thin books overnight, normal
// depth during the main session.
func (a *Analyzer) timeRisk(now time.Time) float64 {
	switch h := now.Hour(); {
	case h >= 1 && h <= 5:
		return 0.8
	case h >= 9 && h <= 17:
		return 0.3
	default:
		return 0.5
	}
}

func activityRisk(recentSignals int) float64 {
	switch {
	case recentSignals > 10:
		return 0.8
	case recentSignals > 5:
		return 0.5
	default:
		return 0.3
	}
}

func (a *Analyzer) volatilityRisk(pair string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	points := a.history[pair]
	if len(points) > 24 {
		points = points[len(points)-24:]
	}
	if len(points) < 2 {
		return 0.5
	}

	var sum float64
	for _, p := range points {
		sum += p.price
	}
	mean := sum / float64(len(points))
	if mean == 0 {
		return 0.5
	}
	var variance float64
	for _, p := range points {
		d := p.price - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(points)))

	return math.Min(stddev/mean/a.volatilityThreshold, 1.0)
}

func levelFor(score float64) Level {
	switch {
	case score < 0.3:
		return LevelLow
	case score < 0.6:
		return LevelMedium
	default:
		return LevelHigh
	}
}

func recommendations(factors map[string]float64) []string {
	var out []string
	if factors["amount"] > 0.7 {
		out = append(out, "large position size, consider splitting the entry")
	}
	if factors["time"] > 0.7 {
		out = append(out, "off-hours session, expect thinner liquidity")
	}
	if factors["activity"] > 0.7 {
		out = append(out, "unusually high signal rate for this pair")
	}
	if factors["volatility"] > 0.7 {
		out = append(out, "elevated market volatility, size down")
	}
	if len(out) == 0 {
		out = append(out, "no elevated risk factors")
	}
	return out
}
