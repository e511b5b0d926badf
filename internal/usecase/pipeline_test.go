package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/services/risk"
	"TradePulse/pkg/logger"
)

type fakeSource struct {
	mu      sync.Mutex
	samples []models.MarketSample
	err     error
}

func (s *fakeSource) FetchLatest(_ context.Context, pair string) (models.MarketSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.MarketSample{}, s.err
	}
	if len(s.samples) == 0 {
		return models.MarketSample{}, drepo.ErrNoData
	}
	next := s.samples[0]
	if len(s.samples) > 1 {
		s.samples = s.samples[1:]
	}
	next.Pair = pair
	return next, nil
}

type fakeForecaster struct {
	result models.ForecastResult
	err    error
}

func (f *fakeForecaster) Predict(context.Context, string, []models.PricePoint) (models.ForecastResult, error) {
	return f.result, f.err
}

type fakeNotifier struct {
	mu      sync.Mutex
	emitted []models.Signal
	err     error
}

func (n *fakeNotifier) Emit(_ context.Context, sig models.Signal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.emitted = append(n.emitted, sig)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.emitted)
}

type fakeMetrics struct {
	mu         sync.Mutex
	suppressed map[string]int
	skipped    map[string]int
	emitted    int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{suppressed: make(map[string]int), skipped: make(map[string]int)}
}

func (m *fakeMetrics) RecordSampleAccepted(string)         {}
func (m *fakeMetrics) RecordSampleRejected(string, string) {}
func (m *fakeMetrics) RecordTick(string)                   {}
func (m *fakeMetrics) RecordTickSkipped(_, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[reason]++
}
func (m *fakeMetrics) RecordSignalEmitted(string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitted++
}
func (m *fakeMetrics) RecordSignalSuppressed(_, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressed[reason]++
}
func (m *fakeMetrics) RecordQualityScore(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)      {}
func (m *fakeMetrics) RecordError(string)                 {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func risingSamples(n int, start float64) []models.MarketSample {
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	out := make([]models.MarketSample, n)
	for i := range out {
		out[i] = models.MarketSample{
			Price:     start + float64(i)*start*0.01,
			Volume:    100 + float64(i)*20,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func newTestPipeline(src drepo.MarketDataSource, fc *fakeForecaster, nt *fakeNotifier, m drepo.Metrics, t *testing.T) *SignalPipeline {
	cfg := PipelineConfig{
		Pairs:             []string{"BTC/USDT"},
		MinUpdateInterval: time.Nanosecond,
		EmitBurst:         100,
		EmitPerMinute:     6000,
	}
	return NewSignalPipeline(cfg, src, fc, nt, nil, m, risk.NewAnalyzer(0), testLogger(t))
}

func TestTickEmitsOnStrongConfluence(t *testing.T) {
	src := &fakeSource{samples: risingSamples(20, 100)}
	fc := &fakeForecaster{result: models.ForecastResult{Confidence: 0.9, PriceChangePct: 0.02}}
	nt := &fakeNotifier{}
	m := newFakeMetrics()
	p := newTestPipeline(src, fc, nt, m, t)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		p.Tick(ctx, "BTC/USDT")
	}

	if nt.count() == 0 {
		t.Fatal("expected at least one emitted signal")
	}
	sig := nt.emitted[0]
	if sig.Status != models.StatusEmitted {
		t.Errorf("status = %q, want emitted", sig.Status)
	}
	if sig.QualityScore < 3 {
		t.Errorf("qualityScore = %v, below emission threshold", sig.QualityScore)
	}
	if sig.Direction != models.DirectionLong {
		t.Errorf("direction = %q, want long for a rising series", sig.Direction)
	}
	if sig.RiskLevel == "" {
		t.Error("risk level not populated")
	}

	trend, err := p.GetTrend("BTC/USDT")
	if err != nil {
		t.Fatalf("GetTrend: %v", err)
	}
	if trend.Direction != models.TrendUp {
		t.Errorf("cached trend = %q, want up", trend.Direction)
	}
}

func TestTickSkipsWhenSourceHasNoData(t *testing.T) {
	src := &fakeSource{}
	nt := &fakeNotifier{}
	m := newFakeMetrics()
	p := newTestPipeline(src, &fakeForecaster{}, nt, m, t)

	p.Tick(context.Background(), "BTC/USDT")

	if m.skipped["no_data"] != 1 {
		t.Fatalf("skipped[no_data] = %d, want 1", m.skipped["no_data"])
	}
	if nt.count() != 0 {
		t.Fatal("no signal expected")
	}
}

func TestTickDegradesWithoutForecaster(t *testing.T) {
	src := &fakeSource{samples: risingSamples(20, 100)}
	fc := &fakeForecaster{err: errors.New("model offline")}
	nt := &fakeNotifier{}
	m := newFakeMetrics()
	p := newTestPipeline(src, fc, nt, m, t)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		p.Tick(ctx, "BTC/USDT")
	}

	// Trend-only evaluation still runs; emitted signals carry zero
	// forecast confidence.
	for _, sig := range nt.emitted {
		if sig.ForecastConfidence != 0 {
			t.Fatalf("forecastConfidence = %v, want 0", sig.ForecastConfidence)
		}
	}
}

func TestTickUnknownPairIsNoop(t *testing.T) {
	src := &fakeSource{samples: risingSamples(5, 100)}
	p := newTestPipeline(src, &fakeForecaster{}, &fakeNotifier{}, newFakeMetrics(), t)

	p.Tick(context.Background(), "DOGE/USDT")

	if _, err := p.GetTrend("DOGE/USDT"); !errors.Is(err, ErrUnknownPair) {
		t.Fatalf("err = %v, want ErrUnknownPair", err)
	}
}

func TestMarkExecutedMovesSignal(t *testing.T) {
	src := &fakeSource{samples: risingSamples(20, 100)}
	fc := &fakeForecaster{result: models.ForecastResult{Confidence: 0.95, PriceChangePct: 0.03}}
	nt := &fakeNotifier{}
	p := newTestPipeline(src, fc, nt, newFakeMetrics(), t)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		p.Tick(ctx, "BTC/USDT")
	}

	active, err := p.GetActiveSignals("BTC/USDT")
	if err != nil {
		t.Fatalf("GetActiveSignals: %v", err)
	}
	if len(active) == 0 {
		t.Skip("no signal crossed the active threshold in this run")
	}

	sig, err := p.MarkExecuted("BTC/USDT", 0)
	if err != nil {
		t.Fatalf("MarkExecuted: %v", err)
	}
	if sig.Status != models.StatusExecuted {
		t.Errorf("status = %q, want executed", sig.Status)
	}

	executed, err := p.GetExecutedSignals("BTC/USDT")
	if err != nil {
		t.Fatalf("GetExecutedSignals: %v", err)
	}
	if len(executed) != 1 {
		t.Fatalf("executed = %d, want 1", len(executed))
	}
	remaining, _ := p.GetActiveSignals("BTC/USDT")
	if len(remaining) != len(active)-1 {
		t.Fatalf("active = %d, want %d", len(remaining), len(active)-1)
	}

	if _, err := p.MarkExecuted("BTC/USDT", 99); !errors.Is(err, ErrNoSuchSignal) {
		t.Fatalf("err = %v, want ErrNoSuchSignal", err)
	}
}

func TestStatsTrackActivity(t *testing.T) {
	src := &fakeSource{samples: risingSamples(20, 100)}
	fc := &fakeForecaster{result: models.ForecastResult{Confidence: 0.9, PriceChangePct: 0.02}}
	p := newTestPipeline(src, fc, &fakeNotifier{}, newFakeMetrics(), t)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		p.Tick(ctx, "BTC/USDT")
	}

	stats, err := p.GetStats("BTC/USDT")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Pair != "BTC/USDT" {
		t.Errorf("pair = %q", stats.Pair)
	}
	if stats.LastCheck == nil {
		t.Error("lastCheck not set")
	}
	if stats.TotalSignals == 0 {
		t.Error("expected emitted signals counted")
	}
}

func TestStartStopCompletesInFlightTick(t *testing.T) {
	src := &fakeSource{samples: risingSamples(50, 100)}
	fc := &fakeForecaster{result: models.ForecastResult{Confidence: 0.9, PriceChangePct: 0.02}}
	nt := &fakeNotifier{}
	cfg := PipelineConfig{
		Pairs:             []string{"BTC/USDT"},
		TickInterval:      5 * time.Millisecond,
		MinUpdateInterval: time.Nanosecond,
		EmitBurst:         100,
		EmitPerMinute:     6000,
	}
	p := NewSignalPipeline(cfg, src, fc, nt, nil, newFakeMetrics(), risk.NewAnalyzer(0), testLogger(t))

	p.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	p.Stop()

	// After Stop returns no further ticks may run.
	before := nt.count()
	time.Sleep(20 * time.Millisecond)
	if after := nt.count(); after != before {
		t.Fatalf("emissions after Stop: %d -> %d", before, after)
	}
}
