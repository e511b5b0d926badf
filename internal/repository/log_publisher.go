package repository

import (
	"context"

	pkgkafka "TradePulse/pkg/kafka"
	"TradePulse/pkg/logger"
)

// LogPublisher adapts the Kafka producer to the log collector's
// Publisher interface.
type LogPublisher struct {
	producer *pkgkafka.Producer
}

var _ logger.Publisher = (*LogPublisher)(nil)

func NewLogPublisher(producer *pkgkafka.Producer) *LogPublisher {
	return &LogPublisher{producer: producer}
}

func (p *LogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
