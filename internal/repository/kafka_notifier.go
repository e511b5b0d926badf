package repository

import (
	"context"
	"fmt"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	pkgkafka "TradePulse/pkg/kafka"
)

// KafkaNotifier publishes emitted signals to a Kafka topic, keyed by
// pair so consumers see per-pair ordering.
type KafkaNotifier struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ drepo.Notifier = (*KafkaNotifier)(nil)

func NewKafkaNotifier(producer *pkgkafka.Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Emit(ctx context.Context, sig models.Signal) error {
	if err := n.producer.Publish(ctx, n.topic, []byte(sig.Pair), sig); err != nil {
		return fmt.Errorf("publish signal %s: %w", sig.ID, err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
