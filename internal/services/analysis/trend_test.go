package analysis

import (
	"math"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
)

func window(closes, volumes []float64) []models.PricePoint {
	base := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, len(closes))
	for i := range closes {
		pts[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Second),
			Open:      closes[i],
			High:      closes[i],
			Low:       closes[i],
			Close:     closes[i],
			Volume:    volumes[i],
		}
	}
	return pts
}

func TestAnalyzeTooFewPoints(t *testing.T) {
	a := NewTrendAnalyzer(2, 0.001)
	res := a.Analyze(window([]float64{100}, []float64{1}))
	if res.Direction != models.TrendNeutral || res.Strength != 0 {
		t.Fatalf("expected neutral/0, got %+v", res)
	}
}

func TestAnalyzeRisingSeries(t *testing.T) {
	a := NewTrendAnalyzer(2, 0.001)
	closes := make([]float64, 10)
	volumes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100 + float64(i)*10.0/9.0 // 100 -> 110
		volumes[i] = 10 + float64(i)
	}
	res := a.Analyze(window(closes, volumes))
	if res.Direction != models.TrendUp {
		t.Fatalf("expected up, got %s", res.Direction)
	}
	if res.Strength <= 0 || res.Strength > 1 {
		t.Fatalf("strength out of range: %v", res.Strength)
	}
	if res.PriceChangePct <= 0 {
		t.Fatalf("expected positive price change, got %v", res.PriceChangePct)
	}
}

func TestAnalyzeFallingSeries(t *testing.T) {
	a := NewTrendAnalyzer(2, 0.001)
	res := a.Analyze(window([]float64{110, 105, 100}, []float64{5, 5, 5}))
	if res.Direction != models.TrendDown {
		t.Fatalf("expected down, got %s", res.Direction)
	}
	if res.Strength < 0 || res.Strength > 1 {
		t.Fatalf("strength out of range: %v", res.Strength)
	}
}

func TestAnalyzeFlatSeries(t *testing.T) {
	a := NewTrendAnalyzer(2, 0.001)
	res := a.Analyze(window([]float64{100, 100, 100, 100}, []float64{5, 5, 5, 5}))
	if res.Direction != models.TrendNeutral {
		t.Fatalf("expected neutral, got %s", res.Direction)
	}
	if res.Strength != 0 {
		t.Fatalf("expected zero strength, got %v", res.Strength)
	}
}

func TestAnalyzeZeroVolumeGuard(t *testing.T) {
	a := NewTrendAnalyzer(2, 0.001)
	res := a.Analyze(window([]float64{100, 110}, []float64{0, 0}))
	// zero first volume must not fault and must contribute nothing
	if res.VolumeTrendPct != 0 {
		t.Fatalf("expected zero volume trend, got %v", res.VolumeTrendPct)
	}
	if res.Direction != models.TrendUp {
		t.Fatalf("expected up, got %s", res.Direction)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewTrendAnalyzer(2, 0.001)
	w := window([]float64{100, 103, 101, 106}, []float64{5, 7, 6, 9})
	first := a.Analyze(w)
	second := a.Analyze(w)
	if first != second {
		t.Fatalf("analyze not deterministic: %+v vs %+v", first, second)
	}
}

func TestRelativeStddev(t *testing.T) {
	got := relativeStddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	want := 2.0 / 5.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("relativeStddev = %v, want %v", got, want)
	}
	if relativeStddev(nil) != 0 {
		t.Fatalf("empty slice should yield 0")
	}
}
