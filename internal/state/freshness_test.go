package state

import (
	"testing"
	"time"

	"bookswap-client/internal/domain"
)

func TestFreshness_TTLBoundary(t *testing.T) {
	clock := &fakeClock{ms: 1_000_000}
	f := NewFreshness(DefaultCacheTTL).MarkFetched(clock.Now())

	clock.Advance(DefaultCacheTTL - time.Millisecond)
	if !f.Valid(clock.Now()) {
		t.Error("cache should be valid at TTL-1ms")
	}

	clock.Advance(time.Millisecond)
	if f.Valid(clock.Now()) {
		t.Error("cache should be stale at exactly TTL")
	}
}

func TestFreshness_NeverFetchedIsStale(t *testing.T) {
	f := NewFreshness(DefaultCacheTTL)
	if f.Valid(time.UnixMilli(1)) {
		t.Error("unfetched marker should be stale")
	}
}

func TestFreshness_InvalidateForcesStale(t *testing.T) {
	clock := &fakeClock{ms: 1_000_000}
	f := NewFreshness(DefaultCacheTTL).MarkFetched(clock.Now())

	f = f.Invalidate()
	if f.Valid(clock.Now()) {
		t.Error("invalidated marker should be stale regardless of elapsed time")
	}
}

func TestScenario_EmptyFetchStillStampsCache(t *testing.T) {
	clock := &fakeClock{ms: 1_000_000}
	eng := newTestEngine(clock)

	eng.Dispatch(SwapsFetched{Swaps: nil})
	if !eng.CacheValid() {
		t.Fatal("cache should be valid immediately after an empty fetch")
	}

	clock.Advance(DefaultCacheTTL)
	if eng.CacheValid() {
		t.Fatal("cache should be stale past the TTL")
	}
}

func TestCacheInvalidated_GatesRefetch(t *testing.T) {
	clock := &fakeClock{ms: 1_000_000}
	eng := newTestEngine(clock)

	eng.Dispatch(SwapsFetched{Swaps: []*domain.Swap{makeSwap("s1", domain.SwapStatusPending)}})
	if !eng.CacheValid() {
		t.Fatal("cache should be valid after fetch")
	}

	eng.Dispatch(CacheInvalidated{})
	if eng.CacheValid() {
		t.Error("explicit invalidation should force staleness")
	}

	// The collection itself is untouched by invalidation.
	if n := len(eng.AllSwaps()); n != 1 {
		t.Errorf("invalidation must not drop data, got %d swaps", n)
	}
}
