package models

import "time"

// SignalDirection is the side of a trading signal.
type SignalDirection string

const (
	DirectionLong  SignalDirection = "long"
	DirectionShort SignalDirection = "short"
)

// SignalStatus tracks the lifecycle of a signal. The engine only ever sets
// New and Emitted; later transitions belong to external collaborators.
type SignalStatus string

const (
	StatusNew      SignalStatus = "new"
	StatusEmitted  SignalStatus = "emitted"
	StatusExecuted SignalStatus = "executed"
	StatusIgnored  SignalStatus = "ignored"
	StatusExpired  SignalStatus = "expired"
)

// Signal is a fully derived trading signal. Immutable after creation except
// for Status.
type Signal struct {
	ID                 string          `json:"id"`
	Pair               string          `json:"pair"`
	Direction          SignalDirection `json:"direction"`
	Entry              float64         `json:"entry"`
	StopLoss           float64         `json:"stop_loss"`
	TakeProfit         float64         `json:"take_profit"`
	ExpectedProfitPct  float64         `json:"expected_profit_pct"`
	QualityScore       float64         `json:"quality_score"` // [0,10]
	TrendStrength      float64         `json:"trend_strength"`
	ForecastConfidence float64         `json:"forecast_confidence"`
	RiskScore          float64         `json:"risk_score"` // [0,1]
	RiskLevel          string          `json:"risk_level"`
	CreatedAt          time.Time       `json:"created_at"`
	Status             SignalStatus    `json:"status"`
}

// PipelineStats summarizes generator activity for one pair.
type PipelineStats struct {
	Pair               string     `json:"pair"`
	TotalSignals       int        `json:"total_signals"`
	ActiveSignals      int        `json:"active_signals"`
	AvgIntervalMinutes float64    `json:"avg_interval_minutes"`
	LastCheck          *time.Time `json:"last_check,omitempty"`
	LastSignalAt       *time.Time `json:"last_signal_at,omitempty"`
}
