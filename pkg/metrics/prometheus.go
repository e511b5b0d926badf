package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	samplesAccepted   *prometheus.CounterVec
	samplesRejected   *prometheus.CounterVec
	ticksTotal        *prometheus.CounterVec
	ticksSkipped      *prometheus.CounterVec
	signalsEmitted    *prometheus.CounterVec
	signalsSuppressed *prometheus.CounterVec
	lastQualityScore  *prometheus.GaugeVec
	errorsTotal       *prometheus.CounterVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		samplesAccepted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_samples_accepted_total",
				Help: "Market samples accepted into the series buffer",
			},
			[]string{"pair"},
		),
		samplesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_samples_rejected_total",
				Help: "Market samples rejected by the series buffer",
			},
			[]string{"pair", "reason"},
		),
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_ticks_total",
				Help: "Pipeline ticks started",
			},
			[]string{"pair"},
		),
		ticksSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_ticks_skipped_total",
				Help: "Pipeline ticks skipped before analysis",
			},
			[]string{"pair", "reason"},
		),
		signalsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_signals_emitted_total",
				Help: "Signals that passed the emission gate",
			},
			[]string{"pair", "direction"},
		),
		signalsSuppressed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_signals_suppressed_total",
				Help: "Candidate signals rejected or gated",
			},
			[]string{"pair", "reason"},
		),
		lastQualityScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradepulse_last_quality_score",
				Help: "Quality score of the last scored candidate",
			},
			[]string{"pair"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradepulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordSampleAccepted(pair string) {
	r.samplesAccepted.WithLabelValues(pair).Inc()
}

func (r *Recorder) RecordSampleRejected(pair, reason string) {
	r.samplesRejected.WithLabelValues(pair, reason).Inc()
}

func (r *Recorder) RecordTick(pair string) {
	r.ticksTotal.WithLabelValues(pair).Inc()
}

func (r *Recorder) RecordTickSkipped(pair, reason string) {
	r.ticksSkipped.WithLabelValues(pair, reason).Inc()
}

func (r *Recorder) RecordSignalEmitted(pair, direction string) {
	r.signalsEmitted.WithLabelValues(pair, direction).Inc()
}

func (r *Recorder) RecordSignalSuppressed(pair, reason string) {
	r.signalsSuppressed.WithLabelValues(pair, reason).Inc()
}

func (r *Recorder) RecordQualityScore(pair string, score float64) {
	r.lastQualityScore.WithLabelValues(pair).Set(score)
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
