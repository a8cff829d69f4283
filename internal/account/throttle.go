package account

import (
	"sync"
	"time"
)

// registrationThrottle rate-limits account creation per originating
// address over a sliding window. State is process-local and never
// persisted: the throttle damps abuse, it is not a hard security
// boundary shared across instances.
type registrationThrottle struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	ceiling  int
	clock    Clock
}

func newRegistrationThrottle(cfg ThrottleConfig, clock Clock) *registrationThrottle {
	return &registrationThrottle{
		attempts: make(map[string][]time.Time),
		window:   cfg.Window,
		ceiling:  cfg.Ceiling,
		clock:    clock,
	}
}

// Allow prunes attempts older than the window and reports whether addr
// is still below the ceiling.
func (t *registrationThrottle) Allow(addr string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.pruneLocked(addr)
	return len(kept) < t.ceiling
}

// Record logs an attempt for addr. Called only for attempts that passed
// the gate, so rejected bursts do not extend the window.
func (t *registrationThrottle) Record(addr string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.pruneLocked(addr)
	t.attempts[addr] = append(kept, t.clock.Now())
}

// pruneLocked drops expired entries for addr and returns the survivors.
// Empty entries are deleted so the map does not grow unbounded.
func (t *registrationThrottle) pruneLocked(addr string) []time.Time {
	cutoff := t.clock.Now().Add(-t.window)
	stamps := t.attempts[addr]

	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) == 0 {
		delete(t.attempts, addr)
		return nil
	}
	t.attempts[addr] = kept
	return kept
}
