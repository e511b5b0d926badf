package repository

import (
	"context"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/service/notify"
	"TradePulse/pkg/logger"
)

// LogNotifier writes signal summaries to the application log. Used when
// no broker or queue is configured, mostly in development.
type LogNotifier struct {
	log *logger.Logger
}

var _ drepo.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Emit(_ context.Context, sig models.Signal) error {
	n.log.Info("signal",
		logger.String("pair", sig.Pair),
		logger.String("summary", notify.FormatSummary(sig)))
	return nil
}
