package session

import (
	"sync"
	"time"
)

// RateLimiter bounds outbound message rate per message kind with a sliding
// window. The client produces position updates every simulation tick; the
// limiter keeps the wire rate bounded without touching combat or tournament
// messages. One abusive producer kind cannot starve the others.
type RateLimiter struct {
	maxEvents int
	window    time.Duration
	now       func() time.Time

	mu     sync.Mutex
	events map[string][]time.Time
}

// NewRateLimiter allows maxEvents per window for each kind independently.
func NewRateLimiter(maxEvents int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxEvents: maxEvents,
		window:    window,
		now:       time.Now,
		events:    make(map[string][]time.Time),
	}
}

// Allow reports whether another message of this kind fits in the window, and
// records it if so.
func (r *RateLimiter) Allow(kind string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	timestamps := r.events[kind]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= r.maxEvents {
		r.events[kind] = valid
		return false
	}

	r.events[kind] = append(valid, now)
	return true
}

// Cleanup drops kinds with no activity inside the window.
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	for kind, timestamps := range r.events {
		active := false
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				active = true
				break
			}
		}
		if !active {
			delete(r.events, kind)
		}
	}
}
