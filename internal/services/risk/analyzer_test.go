package risk

import (
	"testing"
	"time"
)

func fixedNow(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 1, hour, 0, 0, 0, time.UTC)
	}
}

func TestAssessCalmMarketIsLowRisk(t *testing.T) {
	a := NewAnalyzer(0)
	a.now = fixedNow(12)

	base := a.now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		a.Observe("BTC/USDT", 100, base.Add(time.Duration(i)*time.Minute))
	}

	got := a.Assess("BTC/USDT", 0.5, 0)
	// amount 0.05, time 0.3, activity 0.3, volatility 0 -> 0.1625
	if got.Level != LevelLow {
		t.Fatalf("level = %q (score %v), want LOW", got.Level, got.Score)
	}
	if got.Factors["volatility"] != 0 {
		t.Errorf("volatility factor = %v, want 0 for flat prices", got.Factors["volatility"])
	}
	if len(got.Recommendations) != 1 {
		t.Errorf("recommendations = %v, want the no-findings line only", got.Recommendations)
	}
}

func TestAssessStackedFactorsAreHighRisk(t *testing.T) {
	a := NewAnalyzer(0.01)
	a.now = fixedNow(3)

	base := a.now().Add(-time.Hour)
	prices := []float64{100, 150, 80, 160, 90, 170}
	for i, p := range prices {
		a.Observe("BTC/USDT", p, base.Add(time.Duration(i)*time.Minute))
	}

	got := a.Assess("BTC/USDT", 50, 20)
	if got.Level != LevelHigh {
		t.Fatalf("level = %q (score %v), want HIGH", got.Level, got.Score)
	}
	// amount, time, activity and volatility all above the advice threshold.
	if len(got.Recommendations) != 4 {
		t.Errorf("recommendations = %v, want all four findings", got.Recommendations)
	}
}

func TestVolatilityDefaultsWithoutHistory(t *testing.T) {
	a := NewAnalyzer(0)
	a.now = fixedNow(12)

	got := a.Assess("ETH/USDT", 1, 0)
	if got.Factors["volatility"] != 0.5 {
		t.Fatalf("volatility factor = %v, want neutral 0.5 without history", got.Factors["volatility"])
	}
}

func TestObserveTrimsOldHistory(t *testing.T) {
	a := NewAnalyzer(0)
	a.now = fixedNow(12)

	a.Observe("BTC/USDT", 100, a.now().Add(-30*time.Hour))
	a.Observe("BTC/USDT", 200, a.now().Add(-time.Minute))

	a.mu.RLock()
	n := len(a.history["BTC/USDT"])
	a.mu.RUnlock()
	if n != 1 {
		t.Fatalf("history size = %d, want 1 after trim", n)
	}
}

func TestObserveRejectsNonPositivePrice(t *testing.T) {
	a := NewAnalyzer(0)
	a.Observe("BTC/USDT", 0, time.Now())
	a.Observe("BTC/USDT", -5, time.Now())

	a.mu.RLock()
	n := len(a.history["BTC/USDT"])
	a.mu.RUnlock()
	if n != 0 {
		t.Fatalf("history size = %d, want 0", n)
	}
}
