package state

import "time"

// DefaultCacheTTL is how long a fetched swap collection stays fresh.
const DefaultCacheTTL = 3 * time.Minute

// Freshness is the cache validity marker: a single fetch timestamp plus a
// fixed TTL. Value semantics keep state snapshots immutable. Freshness has no
// opinion about network behavior; it only answers whether a refetch is due.
type Freshness struct {
	fetchedAt int64 // ms, 0 = never fetched or invalidated
	ttl       time.Duration
}

// NewFreshness creates a stale marker with the given TTL.
// A non-positive TTL falls back to DefaultCacheTTL.
func NewFreshness(ttl time.Duration) Freshness {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return Freshness{ttl: ttl}
}

// MarkFetched returns a marker stamped at now.
func (f Freshness) MarkFetched(now time.Time) Freshness {
	f.fetchedAt = now.UnixMilli()
	return f
}

// markFetchedMillis stamps the marker with an engine-clock millisecond value.
func (f Freshness) markFetchedMillis(now int64) Freshness {
	f.fetchedAt = now
	return f
}

// Invalidate returns a marker that is stale regardless of elapsed time.
func (f Freshness) Invalidate() Freshness {
	f.fetchedAt = 0
	return f
}

// Valid reports whether less than the TTL has elapsed since the last fetch.
func (f Freshness) Valid(now time.Time) bool {
	if f.fetchedAt == 0 {
		return false
	}
	return now.UnixMilli()-f.fetchedAt < f.ttl.Milliseconds()
}
