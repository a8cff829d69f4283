package account

import (
	"testing"
	"time"
)

func newTestThrottle(window time.Duration, ceiling int) (*registrationThrottle, *manualClock) {
	clock := newManualClock()
	return newRegistrationThrottle(ThrottleConfig{Window: window, Ceiling: ceiling}, clock), clock
}

func TestThrottleCeiling(t *testing.T) {
	th, _ := newTestThrottle(15*time.Minute, 5)

	for i := 0; i < 5; i++ {
		if !th.Allow("10.0.0.1") {
			t.Fatalf("attempt %d rejected below ceiling", i+1)
		}
		th.Record("10.0.0.1")
	}

	if th.Allow("10.0.0.1") {
		t.Fatal("attempt above ceiling allowed")
	}
}

func TestThrottleWindowSlides(t *testing.T) {
	th, clock := newTestThrottle(15*time.Minute, 5)

	// One attempt per minute fills the window at t=0..4.
	for i := 0; i < 5; i++ {
		if !th.Allow("10.0.0.1") {
			t.Fatalf("attempt at t=%dm rejected", i)
		}
		th.Record("10.0.0.1")
		clock.Advance(time.Minute)
	}

	// t=5m: the window still holds all five.
	if th.Allow("10.0.0.1") {
		t.Fatal("expected rejection with five attempts in window")
	}

	// t=16m: the t=0 attempt has aged out.
	clock.Advance(11 * time.Minute)
	if !th.Allow("10.0.0.1") {
		t.Fatal("expected allowance after oldest attempt expired")
	}
}

func TestThrottleAddressesAreIndependent(t *testing.T) {
	th, _ := newTestThrottle(15*time.Minute, 1)

	th.Record("10.0.0.1")
	if th.Allow("10.0.0.1") {
		t.Fatal("saturated address allowed")
	}
	if !th.Allow("10.0.0.2") {
		t.Fatal("unrelated address rejected")
	}
}

func TestThrottlePrunesEmptyEntries(t *testing.T) {
	th, clock := newTestThrottle(time.Minute, 3)

	th.Record("10.0.0.1")
	th.Record("10.0.0.2")
	clock.Advance(2 * time.Minute)

	th.Allow("10.0.0.1")
	th.Allow("10.0.0.2")

	th.mu.Lock()
	defer th.mu.Unlock()
	if len(th.attempts) != 0 {
		t.Fatalf("attempts map holds %d stale entries", len(th.attempts))
	}
}
