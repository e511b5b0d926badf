package repository

import (
	"context"
	"errors"

	"TradePulse/internal/domain/models"
)

// ErrNoData signals that a market source currently has nothing for a pair.
// The pipeline treats it as "skip this tick", never as a fault.
var ErrNoData = errors.New("market data: no data")

// MarketDataSource delivers the latest observed sample for a pair.
// Fetch failures must not propagate as pipeline faults.
type MarketDataSource interface {
	FetchLatest(ctx context.Context, pair string) (models.MarketSample, error)
}

// Notifier delivers emitted signals. Fire-and-forget from the engine's
// perspective; delivery guarantees belong to the implementation.
type Notifier interface {
	Emit(ctx context.Context, sig models.Signal) error
}

// SignalArchive records emitted signals outside the engine (history for
// offline analysis). The in-memory active list stays authoritative.
type SignalArchive interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, sig models.Signal) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordSampleAccepted(pair string)
	RecordSampleRejected(pair, reason string)
	RecordTick(pair string)
	RecordTickSkipped(pair, reason string)
	RecordSignalEmitted(pair, direction string)
	RecordSignalSuppressed(pair, reason string)
	RecordQualityScore(pair string, score float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
