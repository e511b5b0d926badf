package notify

import (
	"context"
	"fmt"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/logger"
	"TradePulse/pkg/queue"
)

// Sender delivers a rendered signal summary to a channel (chat bot,
// webhook). Implementations live outside the engine.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// SignalJob consumes emitted signals off the queue and pushes their
// summaries to the configured sender.
type SignalJob struct {
	msgType string
	sender  Sender
	log     *logger.Logger
}

var _ queue.Job = (*SignalJob)(nil)

func NewSignalJob(msgType string, sender Sender, log *logger.Logger) *SignalJob {
	return &SignalJob{msgType: msgType, sender: sender, log: log}
}

func (j *SignalJob) Name() string { return "signal-delivery" }
func (j *SignalJob) Type() string { return j.msgType }

func (j *SignalJob) Handle(ctx context.Context, payload interface{}) error {
	sig, err := queue.ParsePayload[models.Signal](payload)
	if err != nil {
		return fmt.Errorf("signal payload: %w", err)
	}

	text := FormatSummary(*sig)
	if j.sender == nil {
		j.log.Info("signal summary", logger.String("pair", sig.Pair), logger.String("text", text))
		return nil
	}
	if err := j.sender.Send(ctx, text); err != nil {
		return fmt.Errorf("deliver signal %s: %w", sig.ID, err)
	}
	return nil
}
