package forecast

import (
	"context"
	"errors"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/domain/service"
	"TradePulse/pkg/cache"
)

// CachedForecaster memoizes forecasts keyed by pair and the newest
// window timestamp, so repeated ticks over an unchanged window reuse
// the last inference instead of hitting the service again.
type CachedForecaster struct {
	inner service.Forecaster
	cache cache.Service
	ttl   time.Duration
}

var _ service.Forecaster = (*CachedForecaster)(nil)

// NewCachedForecaster wraps inner with a cache layer. A non-positive
// ttl means 1 minute.
func NewCachedForecaster(inner service.Forecaster, c cache.Service, ttl time.Duration) *CachedForecaster {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedForecaster{inner: inner, cache: c, ttl: ttl}
}

func (f *CachedForecaster) Predict(ctx context.Context, pair string, window []models.PricePoint) (models.ForecastResult, error) {
	if len(window) == 0 || f.cache == nil {
		return f.inner.Predict(ctx, pair, window)
	}

	key := cache.GenerateKeyWithParams("forecast", pair, window[len(window)-1].Timestamp.Unix())

	var cached models.ForecastResult
	if err := f.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache trouble never blocks inference.
		return f.inner.Predict(ctx, pair, window)
	}

	result, err := f.inner.Predict(ctx, pair, window)
	if err != nil {
		return models.ForecastResult{}, err
	}
	_ = f.cache.Set(ctx, key, result, f.ttl)
	return result, nil
}
