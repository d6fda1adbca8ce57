// Package ratelimit provides per-key token bucket admission control.
//
// Each key owns an independent bucket of Capacity tokens that refills by one
// token every RefillInterval. Buckets are created on first use and refilled
// lazily when a request arrives, so no background timer is needed for
// correctness. Partial refill progress is carried over: a request half an
// interval after a refill still counts that half toward the next token.
// Sweep can be run periodically to evict idle buckets.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter holds one token bucket per key.
type Limiter struct {
	mu       sync.RWMutex
	buckets  map[string]*bucket
	capacity int
	every    rate.Limit
	now      func() time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New returns a Limiter whose buckets hold capacity tokens and regain one
// token per refillInterval.
func New(capacity int, refillInterval time.Duration, opts ...Option) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		every:    rate.Every(refillInterval),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one token from key's bucket and reports whether one was
// available.
func (l *Limiter) Allow(key string) bool {
	return l.AllowAt(key, l.now())
}

// AllowAt is Allow with an explicit timestamp.
func (l *Limiter) AllowAt(key string, now time.Time) bool {
	b := l.bucket(key)
	b.lastSeen.Store(now.UnixNano())
	// rate.Limiter refills and consumes under its own mutex, so each key
	// has a single critical section and keys never share one.
	return b.lim.AllowN(now, 1)
}

func (l *Limiter) bucket(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[key]; ok {
		return b
	}
	b = &bucket{lim: rate.NewLimiter(l.every, l.capacity)}
	l.buckets[key] = b
	return b
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Sweep evicts buckets not used within idle and returns how many were
// removed. An evicted key starts again with a full bucket, so idle should
// be at least capacity*refillInterval.
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Load() < cutoff {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (l *Limiter) StartSweeper(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 || idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep(idle)
			}
		}
	}()
}
