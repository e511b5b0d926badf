package models

import "time"

// TrendDirection classifies the price trend of a window.
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// MarketSample is one price/volume observation delivered by a market source.
type MarketSample struct {
	Pair      string
	Price     float64
	Volume    float64
	High      float64 // optional; Price is used when zero
	Low       float64 // optional; Price is used when zero
	Timestamp time.Time
}

// PricePoint is a retained OHLCV observation inside a series window.
type PricePoint struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// TrendResult holds the derived trend metrics for one window.
// Recomputed fully on each analysis pass; nothing here is cached.
type TrendResult struct {
	Direction      TrendDirection `json:"direction"`
	Strength       float64        `json:"strength"` // [0,1]
	PriceChangePct float64        `json:"price_change_pct"`
	VolumeTrendPct float64        `json:"volume_trend_pct"`
	Volatility     float64        `json:"volatility"`
	Momentum       float64        `json:"momentum"`
}

// LevelSet holds support/resistance levels derived from a window.
// Support/Resistance may come from the fallback policy; Fallback marks that.
type LevelSet struct {
	Support              float64   `json:"support"`
	Resistance           float64   `json:"resistance"`
	CandidateSupports    []float64 `json:"candidate_supports,omitempty"`
	CandidateResistances []float64 `json:"candidate_resistances,omitempty"`
	Fallback             bool      `json:"fallback"`
}

// ForecastResult is the externally produced prediction, consumed read-only.
type ForecastResult struct {
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"` // [0,1]
	PriceChangePct float64 `json:"price_change_pct"`
}
