package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	dservice "TradePulse/internal/domain/service"
	"TradePulse/internal/service/ratelimit"
	"TradePulse/internal/services/analysis"
	"TradePulse/internal/services/market"
	"TradePulse/internal/services/risk"
	"TradePulse/internal/services/signal"
	"TradePulse/pkg/logger"
)

// ErrUnknownPair is returned by query operations for untracked pairs.
var ErrUnknownPair = errors.New("pipeline: unknown pair")

// ErrNoSuchSignal is returned when an execute request addresses an index
// outside the active list.
var ErrNoSuchSignal = errors.New("pipeline: no such signal")

// PipelineConfig carries the engine knobs. Zero fields fall back to the
// defaults documented per field.
type PipelineConfig struct {
	Pairs             []string
	TickInterval      time.Duration // default 15s
	RetentionHorizon  time.Duration // default 30m
	MinUpdateInterval time.Duration // default 3s
	MinPoints         int           // default 2
	TrendEpsilon      float64       // default 0.001
	MinStrengthPct    float64       // default 0.05
	MinProfitPct      float64       // default 0.3
	BaseTpPct         float64       // default 0.015
	MaxTpMultiplier   float64       // default 3.0
	MinGapPct         float64       // default 0.001
	EmissionThreshold float64       // default 3
	ActiveThreshold   float64       // default 7
	EmitBurst         float64       // default 3 emissions
	EmitPerMinute     float64       // default 1 per minute per pair
}

func (c *PipelineConfig) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = 15 * time.Second
	}
	if c.MinPoints <= 0 {
		c.MinPoints = 2
	}
	if c.EmissionThreshold <= 0 {
		c.EmissionThreshold = 3
	}
	if c.ActiveThreshold <= 0 {
		c.ActiveThreshold = 7
	}
	if c.EmitBurst <= 0 {
		c.EmitBurst = 3
	}
	if c.EmitPerMinute <= 0 {
		c.EmitPerMinute = 1
	}
}

// pairTracker owns all per-instrument state. Nothing here is shared
// across pairs.
type pairTracker struct {
	pair    string
	running int32 // tick overlap guard

	buffer *market.SeriesBuffer
	finder *analysis.LevelFinder

	mu           sync.RWMutex
	lastTrend    models.TrendResult
	lastLevels   models.LevelSet
	active       []models.Signal
	executed     []models.Signal
	totalSignals int
	firstSignal  time.Time
	lastSignal   time.Time
	lastCheck    time.Time
}

// SignalPipeline orchestrates the per-tick flow: fetch sample, update
// the buffer, run trend/level analysis and the forecast, build and
// score a candidate, and gate emission.
type SignalPipeline struct {
	cfg PipelineConfig

	source     drepo.MarketDataSource
	forecaster dservice.Forecaster
	notifier   drepo.Notifier
	archive    drepo.SignalArchive
	metrics    drepo.Metrics
	log        *logger.Logger

	trend   *analysis.TrendAnalyzer
	builder *signal.Builder
	scorer  *signal.Scorer
	risk    *risk.Analyzer
	limiter *ratelimit.Limiter

	mu       sync.RWMutex
	trackers map[string]*pairTracker

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSignalPipeline wires the engine. archive may be nil.
func NewSignalPipeline(
	cfg PipelineConfig,
	source drepo.MarketDataSource,
	forecaster dservice.Forecaster,
	notifier drepo.Notifier,
	archive drepo.SignalArchive,
	metrics drepo.Metrics,
	riskAnalyzer *risk.Analyzer,
	log *logger.Logger,
) *SignalPipeline {
	cfg.applyDefaults()

	p := &SignalPipeline{
		cfg:        cfg,
		source:     source,
		forecaster: forecaster,
		notifier:   notifier,
		archive:    archive,
		metrics:    metrics,
		log:        log,
		trend:      analysis.NewTrendAnalyzer(cfg.MinPoints, cfg.TrendEpsilon),
		builder: signal.NewBuilder(signal.BuilderConfig{
			MinStrengthPct:  cfg.MinStrengthPct,
			MinProfitPct:    cfg.MinProfitPct,
			BaseTpPct:       cfg.BaseTpPct,
			MaxTpMultiplier: cfg.MaxTpMultiplier,
		}),
		scorer:   signal.NewScorer(0, 0),
		risk:     riskAnalyzer,
		limiter:  ratelimit.New(),
		trackers: make(map[string]*pairTracker),
		stopCh:   make(chan struct{}),
	}
	for _, pair := range cfg.Pairs {
		p.trackers[pair] = &pairTracker{
			pair:   pair,
			buffer: market.NewSeriesBuffer(cfg.MinUpdateInterval, cfg.RetentionHorizon),
			finder: analysis.NewLevelFinder(cfg.MinPoints, cfg.MinGapPct),
		}
	}
	return p
}

// Start launches one ticker goroutine per tracked pair.
func (p *SignalPipeline) Start(ctx context.Context) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, t := range p.trackers {
		p.wg.Add(1)
		go p.run(ctx, t)
	}
	p.log.Info("signal pipeline started",
		logger.Int("pairs", len(p.trackers)),
		logger.String("tick_interval", p.cfg.TickInterval.String()))
}

// Stop halts the schedulers. In-flight ticks complete before Stop
// returns; nothing is aborted mid-write.
func (p *SignalPipeline) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	p.log.Info("signal pipeline stopped")
}

func (p *SignalPipeline) run(ctx context.Context, t *pairTracker) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx, t.pair)
		}
	}
}

// Tick runs one full pipeline pass for a pair. Overlapping invocations
// for the same pair are skipped, not queued.
func (p *SignalPipeline) Tick(ctx context.Context, pair string) {
	t := p.tracker(pair)
	if t == nil {
		return
	}
	if !atomic.CompareAndSwapInt32(&t.running, 0, 1) {
		p.metrics.RecordTickSkipped(pair, "overlap")
		return
	}
	defer atomic.StoreInt32(&t.running, 0)

	start := time.Now()
	p.metrics.RecordTick(pair)
	t.mu.Lock()
	t.lastCheck = time.Now().UTC()
	t.mu.Unlock()

	sample, err := p.source.FetchLatest(ctx, pair)
	if err != nil {
		if !errors.Is(err, drepo.ErrNoData) {
			p.metrics.RecordError("fetch")
			p.log.Warn("market fetch failed, skipping tick",
				logger.String("pair", pair), logger.Error(err))
		}
		p.metrics.RecordTickSkipped(pair, "no_data")
		return
	}

	if reason := t.buffer.Append(sample); reason != market.RejectNone {
		p.metrics.RecordSampleRejected(pair, string(reason))
	} else {
		p.metrics.RecordSampleAccepted(pair)
		p.risk.Observe(pair, sample.Price, sample.Timestamp)
	}

	window := t.buffer.Snapshot()
	trend := p.trend.Analyze(window)
	levels := t.finder.Compute(window, sample.Price)

	t.mu.Lock()
	t.lastTrend = trend
	t.lastLevels = levels
	t.mu.Unlock()

	var forecast models.ForecastResult
	if p.forecaster != nil {
		f, err := p.forecaster.Predict(ctx, pair, window)
		if err != nil {
			// Degrade to trend-only evaluation.
			p.log.Debug("forecast unavailable",
				logger.String("pair", pair), logger.Error(err))
		} else {
			forecast = f
		}
	}

	sig, reject := p.builder.Build(pair, sample.Price, trend, levels, forecast)
	if reject != signal.RejectNone {
		p.metrics.RecordSignalSuppressed(pair, string(reject))
		p.metrics.RecordLatency("tick", time.Since(start).Seconds())
		return
	}

	sig.QualityScore = p.scorer.Score(trend, sig.ExpectedProfitPct, forecast.Confidence)
	p.metrics.RecordQualityScore(pair, sig.QualityScore)

	assessment := p.risk.Assess(pair, sig.ExpectedProfitPct, p.recentSignalCount(t))
	sig.RiskScore = assessment.Score
	sig.RiskLevel = string(assessment.Level)

	if sig.QualityScore < p.cfg.EmissionThreshold {
		p.metrics.RecordSignalSuppressed(pair, "low_score")
		p.metrics.RecordLatency("tick", time.Since(start).Seconds())
		return
	}

	if !p.limiter.Allow("emit:"+pair, p.cfg.EmitBurst, p.cfg.EmitPerMinute/60) {
		p.metrics.RecordSignalSuppressed(pair, "rate_limited")
		p.metrics.RecordLatency("tick", time.Since(start).Seconds())
		return
	}

	p.emit(ctx, t, sig)
	p.metrics.RecordLatency("tick", time.Since(start).Seconds())
}

func (p *SignalPipeline) emit(ctx context.Context, t *pairTracker, sig models.Signal) {
	sig.Status = models.StatusEmitted

	if err := p.notifier.Emit(ctx, sig); err != nil {
		p.metrics.RecordError("notify")
		p.log.Error("signal notification failed",
			logger.String("pair", sig.Pair), logger.Error(err))
	}
	if p.archive != nil {
		if err := p.archive.Store(ctx, sig); err != nil {
			p.metrics.RecordError("archive")
			p.log.Warn("signal archive failed",
				logger.String("pair", sig.Pair), logger.Error(err))
		}
	}
	p.metrics.RecordSignalEmitted(sig.Pair, string(sig.Direction))
	p.log.Info("signal emitted",
		logger.String("pair", sig.Pair),
		logger.String("direction", string(sig.Direction)),
		logger.Float64("score", sig.QualityScore),
		logger.Float64("entry", sig.Entry))

	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	t.totalSignals++
	if t.firstSignal.IsZero() {
		t.firstSignal = now
	}
	t.lastSignal = now
	if sig.QualityScore >= p.cfg.ActiveThreshold {
		t.active = append(t.active, sig)
	}
}

func (p *SignalPipeline) recentSignalCount(t *pairTracker) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cutoff := time.Now().Add(-24 * time.Hour)
	n := 0
	for _, s := range t.active {
		if s.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n
}

func (p *SignalPipeline) tracker(pair string) *pairTracker {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.trackers[pair]
}

// Pairs returns the tracked pairs, sorted.
func (p *SignalPipeline) Pairs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.trackers))
	for pair := range p.trackers {
		out = append(out, pair)
	}
	sort.Strings(out)
	return out
}

// GetTrend returns the last computed trend for a pair.
func (p *SignalPipeline) GetTrend(pair string) (models.TrendResult, error) {
	t := p.tracker(pair)
	if t == nil {
		return models.TrendResult{}, fmt.Errorf("%w: %s", ErrUnknownPair, pair)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastTrend, nil
}

// GetLevels returns the last computed level set for a pair.
func (p *SignalPipeline) GetLevels(pair string) (models.LevelSet, error) {
	t := p.tracker(pair)
	if t == nil {
		return models.LevelSet{}, fmt.Errorf("%w: %s", ErrUnknownPair, pair)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastLevels, nil
}

// GetActiveSignals returns the signals not yet acted upon by a
// collaborator, newest last. Signals enter this list with status emitted,
// the post-delivery name for what starts life as a new signal; MarkExecuted
// moves them out, so the set is exactly the non-executed ones.
func (p *SignalPipeline) GetActiveSignals(pair string) ([]models.Signal, error) {
	t := p.tracker(pair)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPair, pair)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Signal, len(t.active))
	copy(out, t.active)
	return out, nil
}

// GetExecutedSignals returns signals previously marked executed.
func (p *SignalPipeline) GetExecutedSignals(pair string) ([]models.Signal, error) {
	t := p.tracker(pair)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPair, pair)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Signal, len(t.executed))
	copy(out, t.executed)
	return out, nil
}

// MarkExecuted transitions the active signal at index to executed and
// moves it to the executed list. Pure status transition, nothing is
// recomputed.
func (p *SignalPipeline) MarkExecuted(pair string, index int) (models.Signal, error) {
	t := p.tracker(pair)
	if t == nil {
		return models.Signal{}, fmt.Errorf("%w: %s", ErrUnknownPair, pair)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.active) {
		return models.Signal{}, fmt.Errorf("%w: %s[%d]", ErrNoSuchSignal, pair, index)
	}
	sig := t.active[index]
	sig.Status = models.StatusExecuted
	t.active = append(t.active[:index], t.active[index+1:]...)
	t.executed = append(t.executed, sig)
	return sig, nil
}

// GetStats summarizes generator activity for a pair.
func (p *SignalPipeline) GetStats(pair string) (models.PipelineStats, error) {
	t := p.tracker(pair)
	if t == nil {
		return models.PipelineStats{}, fmt.Errorf("%w: %s", ErrUnknownPair, pair)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := models.PipelineStats{
		Pair:          pair,
		TotalSignals:  t.totalSignals,
		ActiveSignals: len(t.active),
	}
	if !t.lastCheck.IsZero() {
		lc := t.lastCheck
		stats.LastCheck = &lc
	}
	if !t.lastSignal.IsZero() {
		ls := t.lastSignal
		stats.LastSignalAt = &ls
	}
	if t.totalSignals > 1 {
		stats.AvgIntervalMinutes = t.lastSignal.Sub(t.firstSignal).Minutes() / float64(t.totalSignals-1)
	}
	return stats, nil
}
