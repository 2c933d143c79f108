package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window rate limiter keyed by identifier (typically
// "user_<id>_<provider>"). It keeps, per identifier, the timestamps of
// admitted requests inside the current window. Bursts up to maxRequests are
// admitted instantaneously, then calls are rejected until the oldest
// timestamp ages out. Rejected calls are not recorded.
type Limiter struct {
	mu      sync.Mutex
	history map[string][]time.Time

	// now is swappable for tests.
	now func() time.Time
}

// New creates an empty Limiter.
func New() *Limiter {
	return &Limiter{
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether a request for identifier fits inside the sliding
// window, and records it if so.
func (l *Limiter) Allow(identifier string, maxRequests int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(identifier, now, window)

	if len(recent) >= maxRequests {
		return false
	}

	l.history[identifier] = append(recent, now)
	return true
}

// Remaining returns how many requests the identifier may still make in the
// current window. It prunes expired timestamps but records nothing.
func (l *Limiter) Remaining(identifier string, maxRequests int, window time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(identifier, l.now(), window)
	if remaining := maxRequests - len(recent); remaining > 0 {
		return remaining
	}
	return 0
}

// Reset clears all recorded history for the identifier.
func (l *Limiter) Reset(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, identifier)
}

// prune drops timestamps older than now-window and stores the survivors.
// Callers must hold l.mu.
func (l *Limiter) prune(identifier string, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)

	recent := l.history[identifier][:0]
	for _, ts := range l.history[identifier] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) == 0 {
		delete(l.history, identifier)
		return nil
	}
	l.history[identifier] = recent
	return recent
}
