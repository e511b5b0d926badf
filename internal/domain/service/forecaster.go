package service

import (
	"context"

	"TradePulse/internal/domain/models"
)

// Forecaster produces a predicted price and confidence from a window
// snapshot. The model itself is external; absence or failure must degrade
// to trend-only evaluation, never abort a tick.
type Forecaster interface {
	Predict(ctx context.Context, pair string, window []models.PricePoint) (models.ForecastResult, error)
}
