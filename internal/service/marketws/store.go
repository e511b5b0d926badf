package marketws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
)

// LatestStore holds the most recent sample per pair. It decouples the
// push-based stream from the pull-based pipeline; a sample older than
// maxAge counts as no data.
type LatestStore struct {
	mu     sync.RWMutex
	latest map[string]models.MarketSample
	maxAge time.Duration
	now    func() time.Time
}

var _ drepo.MarketDataSource = (*LatestStore)(nil)

// NewLatestStore creates a store. A non-positive maxAge means 2 minutes.
func NewLatestStore(maxAge time.Duration) *LatestStore {
	if maxAge <= 0 {
		maxAge = 2 * time.Minute
	}
	return &LatestStore{
		latest: make(map[string]models.MarketSample),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Put records a sample, keeping only the newest per pair.
func (s *LatestStore) Put(sample models.MarketSample) {
	if sample.Pair == "" || sample.Price <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.latest[sample.Pair]; ok && !sample.Timestamp.After(prev.Timestamp) {
		return
	}
	s.latest[sample.Pair] = sample
}

// FetchLatest returns the freshest sample for a pair, or ErrNoData when
// nothing recent enough is held.
func (s *LatestStore) FetchLatest(_ context.Context, pair string) (models.MarketSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sample, ok := s.latest[pair]
	if !ok {
		return models.MarketSample{}, fmt.Errorf("%w: %s", drepo.ErrNoData, pair)
	}
	if s.now().Sub(sample.Timestamp) > s.maxAge {
		return models.MarketSample{}, fmt.Errorf("%w: %s stale", drepo.ErrNoData, pair)
	}
	return sample, nil
}
