package notify

import (
	"strings"
	"testing"

	"TradePulse/internal/domain/models"
)

func TestFormatSummary(t *testing.T) {
	sig := models.Signal{
		Pair:              "BTC/USDT",
		Direction:         models.DirectionLong,
		Entry:             65000,
		StopLoss:          64675,
		TakeProfit:        66300,
		ExpectedProfitPct: 2,
		QualityScore:      8.9,
		RiskLevel:         "MEDIUM",
	}
	got := FormatSummary(sig)
	for _, want := range []string{"LONG BTC/USDT", "SL 64675", "TP 66300", "+2.00%", "quality 8.9/10", "risk MEDIUM"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestFormatSummaryShortWithoutRisk(t *testing.T) {
	sig := models.Signal{Pair: "ETH/USDT", Direction: models.DirectionShort, Entry: 3000, QualityScore: 7}
	got := FormatSummary(sig)
	if !strings.Contains(got, "SHORT ETH/USDT") {
		t.Errorf("summary = %q", got)
	}
	if strings.Contains(got, "risk") {
		t.Errorf("unexpected risk text: %q", got)
	}
}
