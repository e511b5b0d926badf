package ratelimit

import (
	"testing"
	"time"
)

func TestAllowExhaustsBurstThenRefills(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if !l.Allow("emit:BTCUSDT", 2, 1) {
			t.Fatalf("call %d should pass within burst", i+1)
		}
	}
	if l.Allow("emit:BTCUSDT", 2, 1) {
		t.Fatal("burst exhausted, call should be denied")
	}

	now = now.Add(time.Second)
	if !l.Allow("emit:BTCUSDT", 2, 1) {
		t.Fatal("one token should have refilled after a second")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	if !l.Allow("emit:BTCUSDT", 1, 0) {
		t.Fatal("first key should start full")
	}
	if l.Allow("emit:BTCUSDT", 1, 0) {
		t.Fatal("first key should be drained")
	}
	if !l.Allow("emit:ETHUSDT", 1, 0) {
		t.Fatal("second key has its own bucket")
	}
}

func TestRefillCapsAtCapacity(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	l.Allow("k", 1, 10)

	// A long idle stretch must not bank more than one token.
	now = now.Add(time.Hour)
	if !l.Allow("k", 1, 10) {
		t.Fatal("token should have refilled")
	}
	if l.Allow("k", 1, 10) {
		t.Fatal("capacity 1 must not accumulate extra tokens")
	}
}
