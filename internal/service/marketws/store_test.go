package marketws

import (
	"context"
	"errors"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
)

func TestLatestStoreKeepsNewestPerPair(t *testing.T) {
	s := NewLatestStore(0)
	now := time.Now()

	s.Put(models.MarketSample{Pair: "BTC/USDT", Price: 100, Timestamp: now.Add(-time.Second)})
	s.Put(models.MarketSample{Pair: "BTC/USDT", Price: 101, Timestamp: now})
	// Older update must not win.
	s.Put(models.MarketSample{Pair: "BTC/USDT", Price: 99, Timestamp: now.Add(-time.Minute)})

	got, err := s.FetchLatest(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if got.Price != 101 {
		t.Fatalf("price = %v, want 101", got.Price)
	}
}

func TestLatestStoreUnknownPair(t *testing.T) {
	s := NewLatestStore(0)
	if _, err := s.FetchLatest(context.Background(), "ETH/USDT"); !errors.Is(err, drepo.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestLatestStoreStaleness(t *testing.T) {
	s := NewLatestStore(time.Minute)
	s.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }

	s.Put(models.MarketSample{Pair: "BTC/USDT", Price: 100, Timestamp: s.now().Add(-2 * time.Minute)})

	if _, err := s.FetchLatest(context.Background(), "BTC/USDT"); !errors.Is(err, drepo.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData for stale sample", err)
	}
}

func TestLatestStoreRejectsInvalid(t *testing.T) {
	s := NewLatestStore(0)
	s.Put(models.MarketSample{Pair: "", Price: 100, Timestamp: time.Now()})
	s.Put(models.MarketSample{Pair: "BTC/USDT", Price: 0, Timestamp: time.Now()})

	if _, err := s.FetchLatest(context.Background(), "BTC/USDT"); err == nil {
		t.Fatal("expected ErrNoData")
	}
}
