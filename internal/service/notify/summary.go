package notify

import (
	"fmt"
	"strings"

	"TradePulse/internal/domain/models"
)

// FormatSummary renders a human-readable one-signal summary for
// delivery channels.
func FormatSummary(sig models.Signal) string {
	var b strings.Builder
	arrow := "LONG"
	if sig.Direction == models.DirectionShort {
		arrow = "SHORT"
	}
	fmt.Fprintf(&b, "%s %s @ %.6g\n", arrow, sig.Pair, sig.Entry)
	fmt.Fprintf(&b, "SL %.6g | TP %.6g (+%.2f%%)\n", sig.StopLoss, sig.TakeProfit, sig.ExpectedProfitPct)
	fmt.Fprintf(&b, "quality %.1f/10", sig.QualityScore)
	if sig.RiskLevel != "" {
		fmt.Fprintf(&b, " | risk %s", sig.RiskLevel)
	}
	return b.String()
}
