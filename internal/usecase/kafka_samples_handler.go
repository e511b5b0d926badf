package usecase

import (
	"context"
	"encoding/json"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/service/marketws"
	pkgkafka "TradePulse/pkg/kafka"
)

// KafkaSamplesHandler consumes market samples from Kafka and feeds the
// latest-sample store. It is the broker-backed alternative to the
// WebSocket stream; both converge on the same store.
type KafkaSamplesHandler struct {
	topic   string
	store   *marketws.LatestStore
	metrics drepo.Metrics
}

func NewKafkaSamplesHandler(topic string, store *marketws.LatestStore, metrics drepo.Metrics) *KafkaSamplesHandler {
	return &KafkaSamplesHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaSamplesHandler) Topic() string { return h.topic }

// incoming message schema: {pair, price, volume, high, low, t}
func (h *KafkaSamplesHandler) Handle(_ context.Context, b []byte) error {
	var m struct {
		Pair   string  `json:"pair"`
		Price  float64 `json:"price"`
		Volume float64 `json:"volume"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		T      int64   `json:"t"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	h.metrics.RecordLatency("ingest_e2e", time.Since(time.Unix(m.T, 0)).Seconds())

	h.store.Put(models.MarketSample{
		Pair:      m.Pair,
		Price:     m.Price,
		Volume:    m.Volume,
		High:      m.High,
		Low:       m.Low,
		Timestamp: time.Unix(m.T, 0).UTC(),
	})
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSamplesHandler)(nil)
