package signal

import (
	"time"

	"github.com/google/uuid"

	"TradePulse/internal/domain/models"
)

// RejectReason explains why Build produced no signal. Rejection is a normal
// outcome, surfaced for diagnostics only.
type RejectReason string

const (
	RejectNone      RejectReason = ""
	RejectWeakTrend RejectReason = "weak_trend"
	RejectThinEdge  RejectReason = "thin_edge"
)

// BuilderConfig holds the risk-bounding knobs of the builder.
type BuilderConfig struct {
	MinStrengthPct  float64 // minimum trend strength to act on
	MinProfitPct    float64 // minimum expected profit, in percent
	BaseTpPct       float64 // base take-profit distance, as a fraction
	MaxTpMultiplier float64 // cap on the dynamic take-profit multiplier
}

func (c *BuilderConfig) applyDefaults() {
	if c.MinStrengthPct <= 0 {
		c.MinStrengthPct = 0.05
	}
	if c.MinProfitPct <= 0 {
		c.MinProfitPct = 0.3
	}
	if c.BaseTpPct <= 0 {
		c.BaseTpPct = 0.015
	}
	if c.MaxTpMultiplier <= 0 {
		c.MaxTpMultiplier = 3.0
	}
}

// Builder combines price, trend, levels and forecast into a candidate
// signal with risk-bounded entry/stop/target levels.
type Builder struct {
	cfg BuilderConfig
}

// NewBuilder creates a builder, filling unset config fields with defaults.
func NewBuilder(cfg BuilderConfig) *Builder {
	cfg.applyDefaults()
	return &Builder{cfg: cfg}
}

// Build derives a candidate signal. A non-empty RejectReason means no
// signal; the zero Signal is returned alongside it.
func (b *Builder) Build(pair string, currentPrice float64, trend models.TrendResult, levels models.LevelSet, forecast models.ForecastResult) (models.Signal, RejectReason) {
	// A neutral direction from the analyzer always carries zero strength,
	// so the strength gate covers it.
	if trend.Strength < b.cfg.MinStrengthPct {
		return models.Signal{}, RejectWeakTrend
	}

	long := trend.Direction == models.TrendUp ||
		(trend.Direction == models.TrendNeutral && forecast.PriceChangePct > 0)

	tpMultiplier := 1 + (trend.Strength/100)*5 + forecast.Confidence*2
	if tpMultiplier > b.cfg.MaxTpMultiplier {
		tpMultiplier = b.cfg.MaxTpMultiplier
	}
	dynamicTpPct := b.cfg.BaseTpPct * tpMultiplier

	var direction models.SignalDirection
	var stopLoss, takeProfit float64
	entry := currentPrice

	if long {
		direction = models.DirectionLong
		stopLoss = maxf(levels.Support, currentPrice*0.995)
		takeProfit = currentPrice * (1 + dynamicTpPct)
		if levels.Resistance > 0 && levels.Resistance < takeProfit {
			takeProfit = levels.Resistance
		}
	} else {
		direction = models.DirectionShort
		stopLoss = currentPrice * 1.005
		if levels.Resistance > 0 && levels.Resistance < stopLoss {
			stopLoss = levels.Resistance
		}
		takeProfit = maxf(levels.Support, currentPrice*(1-dynamicTpPct))
	}

	expectedProfit := absf(takeProfit-entry) / entry * 100
	if expectedProfit < b.cfg.MinProfitPct {
		return models.Signal{}, RejectThinEdge
	}

	return models.Signal{
		ID:                 uuid.NewString(),
		Pair:               pair,
		Direction:          direction,
		Entry:              entry,
		StopLoss:           stopLoss,
		TakeProfit:         takeProfit,
		ExpectedProfitPct:  expectedProfit,
		TrendStrength:      trend.Strength,
		ForecastConfidence: forecast.Confidence,
		CreatedAt:          time.Now().UTC(),
		Status:             models.StatusNew,
	}, RejectNone
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
