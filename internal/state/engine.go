package state

import (
	"sync"
	"time"
)

// Engine owns the state aggregate and serializes all mutations. Dispatch
// applies one event at a time, run to completion, in dispatch order; there
// is no batching or reordering. Reducers are pure functions with no access
// to the engine, so a mutation can never trigger a reentrant dispatch.
type Engine struct {
	mu        sync.RWMutex
	state     *State
	now       func() time.Time
	listeners map[int]func(*State)
	nextSub   int
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	now func() time.Time
	ttl time.Duration
}

// WithClock injects the time source. Used by tests to pin the cache TTL
// boundary; defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCacheTTL overrides the cache freshness TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// NewEngine creates an engine with an empty, stale state.
func NewEngine(opts ...Option) *Engine {
	o := options{now: time.Now, ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		state:     newState(NewFreshness(o.ttl)),
		now:       o.now,
		listeners: make(map[int]func(*State)),
	}
}

// Dispatch applies one event and notifies subscribers with the new snapshot.
// Notification happens after the snapshot is installed, outside the
// reduction, so subscribers observe only complete states.
func (e *Engine) Dispatch(ev Event) {
	e.mu.Lock()
	next := reduce(e.state, ev, e.now().UnixMilli())
	e.state = next
	subs := make([]func(*State), 0, len(e.listeners))
	for _, fn := range e.listeners {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Snapshot returns the current state. Snapshots are immutable; callers must
// not modify what they read.
func (e *Engine) Snapshot() *State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Subscribe registers a listener called with every new snapshot. The
// returned function cancels the subscription.
func (e *Engine) Subscribe(fn func(*State)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}
