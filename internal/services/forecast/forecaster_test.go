package forecast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/cache"
)

func window(n int) []models.PricePoint {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, n)
	for i := range out {
		out[i] = models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Close: 100, Volume: 10}
	}
	return out
}

func TestHTTPForecasterMapsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Pair != "BTC/USDT" || len(req.Window) != 3 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(predictResponse{PredictedPrice: 101.5, Confidence: 1.4, PriceChangePct: 0.015})
	}))
	defer srv.Close()

	f := NewHTTPForecaster(srv.URL, 0)
	got, err := f.Predict(context.Background(), "BTC/USDT", window(3))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.PredictedPrice != 101.5 {
		t.Errorf("predictedPrice = %v", got.PredictedPrice)
	}
	if got.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", got.Confidence)
	}
}

func TestHTTPForecasterSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not ready", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPForecaster(srv.URL, 0)
	if _, err := f.Predict(context.Background(), "BTC/USDT", window(3)); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestCachedForecasterReusesUnchangedWindow(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		json.NewEncoder(w).Encode(predictResponse{PredictedPrice: 100.2, Confidence: 0.6})
	}))
	defer srv.Close()

	f := NewCachedForecaster(NewHTTPForecaster(srv.URL, 0), cache.NewMemoryCache(), time.Minute)

	w := window(5)
	for i := 0; i < 3; i++ {
		if _, err := f.Predict(context.Background(), "BTC/USDT", w); err != nil {
			t.Fatalf("Predict #%d: %v", i, err)
		}
	}
	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Fatalf("upstream calls = %d, want 1", n)
	}

	// A newer window tail invalidates the key.
	w = append(w, models.PricePoint{Timestamp: w[len(w)-1].Timestamp.Add(time.Minute), Close: 101, Volume: 11})
	if _, err := f.Predict(context.Background(), "BTC/USDT", w); err != nil {
		t.Fatalf("Predict after append: %v", err)
	}
	if n := atomic.LoadInt64(&calls); n != 2 {
		t.Fatalf("upstream calls = %d, want 2", n)
	}
}
