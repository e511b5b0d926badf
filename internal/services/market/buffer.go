package market

import (
	"sync"
	"time"

	"TradePulse/internal/domain/models"
)

// RejectReason explains why Append dropped a sample. Rejection is a
// documented no-op, not an error.
type RejectReason string

const (
	RejectNone         RejectReason = ""
	RejectNonPositive  RejectReason = "non_positive_price"
	RejectThrottled    RejectReason = "throttled"
	RejectOutOfOrder   RejectReason = "out_of_order"
)

// SeriesBuffer is the bounded, time-ordered price/volume store for a single
// pair. Single writer: only the owning pipeline appends; Snapshot is safe
// for concurrent readers.
type SeriesBuffer struct {
	mu                sync.RWMutex
	points            []models.PricePoint
	minUpdateInterval time.Duration
	retention         time.Duration
}

// NewSeriesBuffer creates a buffer with the given throttle and retention
// horizon. Non-positive values fall back to the engine defaults (3s / 30m).
func NewSeriesBuffer(minUpdateInterval, retention time.Duration) *SeriesBuffer {
	if minUpdateInterval <= 0 {
		minUpdateInterval = 3 * time.Second
	}
	if retention <= 0 {
		retention = 30 * time.Minute
	}
	return &SeriesBuffer{
		minUpdateInterval: minUpdateInterval,
		retention:         retention,
	}
}

// Append validates and stores a sample, then trims everything older than the
// retention horizon. Ordering is by sample timestamp; duplicates and
// out-of-order samples are rejected, not reordered.
func (b *SeriesBuffer) Append(s models.MarketSample) RejectReason {
	if s.Price <= 0 {
		return RejectNonPositive
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.points); n > 0 {
		last := b.points[n-1].Timestamp
		if !s.Timestamp.After(last) {
			return RejectOutOfOrder
		}
		if s.Timestamp.Sub(last) < b.minUpdateInterval {
			return RejectThrottled
		}
	}

	high, low := s.High, s.Low
	if high <= 0 || high < s.Price {
		high = s.Price
	}
	if low <= 0 || low > s.Price {
		low = s.Price
	}

	b.points = append(b.points, models.PricePoint{
		Timestamp: s.Timestamp,
		Open:      s.Price,
		High:      high,
		Low:       low,
		Close:     s.Price,
		Volume:    s.Volume,
	})

	// Trim against the newest accepted timestamp so the window is a pure
	// function of the samples, independent of wall time.
	cutoff := s.Timestamp.Add(-b.retention)
	i := 0
	for i < len(b.points) && !b.points[i].Timestamp.After(cutoff) {
		i++
	}
	if i > 0 {
		b.points = append(b.points[:0], b.points[i:]...)
	}
	return RejectNone
}

// Snapshot returns a copy of the current window in ascending timestamp
// order. Callers must not assume it tracks later appends.
func (b *SeriesBuffer) Snapshot() []models.PricePoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.PricePoint, len(b.points))
	copy(out, b.points)
	return out
}

// Len returns the number of retained points.
func (b *SeriesBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.points)
}

// Last returns the most recent point, if any.
func (b *SeriesBuffer) Last() (models.PricePoint, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.points) == 0 {
		return models.PricePoint{}, false
	}
	return b.points[len(b.points)-1], true
}
