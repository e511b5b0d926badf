package market

import (
	"testing"
	"time"

	"TradePulse/internal/domain/models"
)

func sampleAt(t time.Time, price, volume float64) models.MarketSample {
	return models.MarketSample{Pair: "SOL/USD", Price: price, Volume: volume, Timestamp: t}
}

func TestAppendRejectsNonPositivePrice(t *testing.T) {
	b := NewSeriesBuffer(0, 0)
	if got := b.Append(sampleAt(time.Now(), 0, 10)); got != RejectNonPositive {
		t.Fatalf("expected RejectNonPositive, got %q", got)
	}
	if got := b.Append(sampleAt(time.Now(), -5, 10)); got != RejectNonPositive {
		t.Fatalf("expected RejectNonPositive, got %q", got)
	}
	if b.Len() != 0 {
		t.Fatalf("buffer should stay empty, has %d", b.Len())
	}
}

func TestAppendThrottlesFastSamples(t *testing.T) {
	b := NewSeriesBuffer(3*time.Second, 30*time.Minute)
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

	if got := b.Append(sampleAt(base, 100, 1)); got != RejectNone {
		t.Fatalf("first sample rejected: %q", got)
	}
	if got := b.Append(sampleAt(base.Add(time.Second), 101, 1)); got != RejectThrottled {
		t.Fatalf("expected throttle, got %q", got)
	}
	if got := b.Append(sampleAt(base.Add(3*time.Second), 101, 1)); got != RejectNone {
		t.Fatalf("sample after interval rejected: %q", got)
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", b.Len())
	}
}

func TestAppendRejectsOutOfOrder(t *testing.T) {
	b := NewSeriesBuffer(time.Second, 30*time.Minute)
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

	b.Append(sampleAt(base, 100, 1))
	if got := b.Append(sampleAt(base, 100, 1)); got != RejectOutOfOrder {
		t.Fatalf("duplicate timestamp should be rejected, got %q", got)
	}
	if got := b.Append(sampleAt(base.Add(-time.Minute), 99, 1)); got != RejectOutOfOrder {
		t.Fatalf("older timestamp should be rejected, got %q", got)
	}
}

func TestAppendTrimsRetentionHorizon(t *testing.T) {
	b := NewSeriesBuffer(time.Second, 30*time.Minute)
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

	// The newest sample at base+45m puts the cutoff at base+15m: base falls
	// out, base+25m stays.
	b.Append(sampleAt(base, 100, 1))
	b.Append(sampleAt(base.Add(25*time.Minute), 101, 1))
	b.Append(sampleAt(base.Add(45*time.Minute), 102, 1))

	w := b.Snapshot()
	if len(w) != 2 {
		t.Fatalf("expected 2 points after trim, got %d", len(w))
	}
	if !w[0].Timestamp.Equal(base.Add(25 * time.Minute)) {
		t.Fatalf("oldest surviving point wrong: %v", w[0].Timestamp)
	}
}

func TestAppendTrimDropsPointAtCutoff(t *testing.T) {
	b := NewSeriesBuffer(time.Second, 30*time.Minute)
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

	// A point exactly retention-old is outside the window.
	b.Append(sampleAt(base, 100, 1))
	b.Append(sampleAt(base.Add(30*time.Minute), 101, 1))

	w := b.Snapshot()
	if len(w) != 1 {
		t.Fatalf("expected 1 point after trim, got %d", len(w))
	}
	if !w[0].Timestamp.Equal(base.Add(30 * time.Minute)) {
		t.Fatalf("surviving point wrong: %v", w[0].Timestamp)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := NewSeriesBuffer(time.Second, 30*time.Minute)
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	b.Append(sampleAt(base, 100, 1))

	w := b.Snapshot()
	w[0].Close = 999

	w2 := b.Snapshot()
	if w2[0].Close != 100 {
		t.Fatalf("snapshot mutation leaked into buffer: %v", w2[0].Close)
	}
}

func TestAppendDerivesHighLow(t *testing.T) {
	b := NewSeriesBuffer(time.Second, 30*time.Minute)
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

	b.Append(models.MarketSample{Pair: "SOL/USD", Price: 100, Volume: 1, High: 105, Low: 95, Timestamp: base})
	b.Append(models.MarketSample{Pair: "SOL/USD", Price: 100, Volume: 1, Timestamp: base.Add(5 * time.Second)})

	w := b.Snapshot()
	if w[0].High != 105 || w[0].Low != 95 {
		t.Fatalf("explicit high/low not kept: %+v", w[0])
	}
	if w[1].High != 100 || w[1].Low != 100 {
		t.Fatalf("missing high/low should default to price: %+v", w[1])
	}
}
