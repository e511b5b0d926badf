package repository

import (
	"context"
	"fmt"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/pkg/queue"
)

// SignalJobType is the queue message type consumed by delivery workers.
const SignalJobType = "signal.emitted"

// QueueNotifier hands emitted signals to the Redis-backed job queue,
// where delivery workers (chat, webhooks) pick them up with retries and
// a dead-letter queue.
type QueueNotifier struct {
	q queue.QueueService
}

var _ drepo.Notifier = (*QueueNotifier)(nil)

func NewQueueNotifier(q queue.QueueService) *QueueNotifier {
	return &QueueNotifier{q: q}
}

func (n *QueueNotifier) Emit(ctx context.Context, sig models.Signal) error {
	if err := n.q.PublishMessage(ctx, SignalJobType, sig); err != nil {
		return fmt.Errorf("enqueue signal %s: %w", sig.ID, err)
	}
	return nil
}
