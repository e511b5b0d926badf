package signal

import (
	"math"
	"testing"

	"TradePulse/internal/domain/models"
)

func TestBuildRejectsWeakTrend(t *testing.T) {
	b := NewBuilder(BuilderConfig{})

	trend := models.TrendResult{Direction: models.TrendUp, Strength: 0.01}
	forecast := models.ForecastResult{Confidence: 0.95, PriceChangePct: 0.05}

	_, reason := b.Build("BTC/USDT", 100, trend, models.LevelSet{Support: 98, Resistance: 102}, forecast)
	if reason != RejectWeakTrend {
		t.Fatalf("reason = %q, want %q", reason, RejectWeakTrend)
	}
}

func TestBuildRejectsThinEdge(t *testing.T) {
	b := NewBuilder(BuilderConfig{})

	trend := models.TrendResult{Direction: models.TrendUp, Strength: 0.5}
	levels := models.LevelSet{Support: 99, Resistance: 100.1}

	_, reason := b.Build("BTC/USDT", 100, trend, levels, models.ForecastResult{})
	if reason != RejectThinEdge {
		t.Fatalf("reason = %q, want %q", reason, RejectThinEdge)
	}
}

func TestBuildLongBoundedByLevels(t *testing.T) {
	b := NewBuilder(BuilderConfig{})

	trend := models.TrendResult{Direction: models.TrendUp, Strength: 0.8}
	levels := models.LevelSet{Support: 98, Resistance: 102}
	forecast := models.ForecastResult{Confidence: 0.9, PriceChangePct: 0.02}

	sig, reason := b.Build("BTC/USDT", 100, trend, levels, forecast)
	if reason != RejectNone {
		t.Fatalf("unexpected rejection: %q", reason)
	}
	if sig.Direction != models.DirectionLong {
		t.Fatalf("direction = %q, want long", sig.Direction)
	}
	if sig.TakeProfit > 102 {
		t.Errorf("takeProfit = %v, want <= 102", sig.TakeProfit)
	}
	if sig.StopLoss < 98 {
		t.Errorf("stopLoss = %v, want >= 98", sig.StopLoss)
	}
	if math.Abs(sig.ExpectedProfitPct-2.0) > 1e-9 {
		t.Errorf("expectedProfitPct = %v, want 2.0", sig.ExpectedProfitPct)
	}
}

func TestBuildShortBoundedByLevels(t *testing.T) {
	b := NewBuilder(BuilderConfig{})

	trend := models.TrendResult{Direction: models.TrendDown, Strength: 0.5}
	levels := models.LevelSet{Support: 97, Resistance: 100.2}
	forecast := models.ForecastResult{Confidence: 0.5, PriceChangePct: -0.02}

	sig, reason := b.Build("ETH/USDT", 100, trend, levels, forecast)
	if reason != RejectNone {
		t.Fatalf("unexpected rejection: %q", reason)
	}
	if sig.Direction != models.DirectionShort {
		t.Fatalf("direction = %q, want short", sig.Direction)
	}
	if sig.StopLoss != 100.2 {
		t.Errorf("stopLoss = %v, want clamped to resistance 100.2", sig.StopLoss)
	}
	if sig.TakeProfit != 97 {
		t.Errorf("takeProfit = %v, want clamped to support 97", sig.TakeProfit)
	}
}

func TestBuildIgnoresZeroFallbackLevels(t *testing.T) {
	b := NewBuilder(BuilderConfig{})

	trend := models.TrendResult{Direction: models.TrendUp, Strength: 0.5}
	forecast := models.ForecastResult{Confidence: 0.5, PriceChangePct: 0.01}

	sig, reason := b.Build("BTC/USDT", 100, trend, models.LevelSet{}, forecast)
	if reason != RejectNone {
		t.Fatalf("unexpected rejection: %q", reason)
	}
	if sig.TakeProfit <= 100 {
		t.Errorf("takeProfit = %v, want above entry with no resistance clamp", sig.TakeProfit)
	}
	if sig.StopLoss != 99.5 {
		t.Errorf("stopLoss = %v, want 99.5", sig.StopLoss)
	}
}

func TestBuildPopulatesSignalMetadata(t *testing.T) {
	b := NewBuilder(BuilderConfig{})

	trend := models.TrendResult{Direction: models.TrendUp, Strength: 0.5}
	levels := models.LevelSet{Support: 98, Resistance: 105}

	sig, reason := b.Build("SOL/USDT", 100, trend, levels, models.ForecastResult{Confidence: 0.7})
	if reason != RejectNone {
		t.Fatalf("unexpected rejection: %q", reason)
	}
	if sig.ID == "" {
		t.Error("expected a generated ID")
	}
	if sig.Pair != "SOL/USDT" {
		t.Errorf("pair = %q", sig.Pair)
	}
	if sig.Status != models.StatusNew {
		t.Errorf("status = %q, want %q", sig.Status, models.StatusNew)
	}
	if sig.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
	if sig.TrendStrength != 0.5 || sig.ForecastConfidence != 0.7 {
		t.Errorf("carried metrics = (%v, %v)", sig.TrendStrength, sig.ForecastConfidence)
	}
}
