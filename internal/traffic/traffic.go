// Package traffic keeps a short sliding log of feed request outcomes. The health
// handler reads error rates from it and the metrics registry exposes window gauges.
package traffic

import (
	"sync"
	"time"
)

// Outcome classifies how a feed request ended.
type Outcome uint8

const (
	// Success is a 200 response.
	Success Outcome = iota
	// Error is a 500 response (input unreadable, malformed JSON, panic).
	Error
	// Denied is a 429 from the rate limiter.
	Denied
)

// retention bounds how long outcomes are kept regardless of the queried window.
const retention = 30 * time.Minute

var defaultTracker = NewTracker()

// RecordSuccess records a 200 feed response.
func RecordSuccess() { defaultTracker.Record(Success) }

// RecordError records a 500 feed response.
func RecordError() { defaultTracker.Record(Error) }

// RecordDenied records a rate-limit denial (429).
func RecordDenied() { defaultTracker.Record(Denied) }

// RequestCount returns the number of outcomes of any kind within the window.
func RequestCount(window time.Duration) int {
	return defaultTracker.RequestCount(window)
}

// DenialCount returns the number of denials within the window.
func DenialCount(window time.Duration) int {
	return defaultTracker.DenialCount(window)
}

// ErrorRate returns (errorCount, totalCount) within the window. Denials are not part of totalCount.
func ErrorRate(window time.Duration) (errors, total int) {
	return defaultTracker.ErrorRate(window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

type event struct {
	at      time.Time
	outcome Outcome
}

// Tracker is an append-only, time-ordered outcome log pruned on write.
type Tracker struct {
	mu     sync.Mutex
	now    func() time.Time
	events []event
}

// NewTracker returns an empty Tracker using the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Record appends an outcome stamped with the current time.
func (t *Tracker) Record(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.events = append(t.events, event{at: now, outcome: o})
	t.pruneLocked(now)
}

// RequestCount returns the number of outcomes of any kind within the window ending now.
func (t *Tracker) RequestCount(window time.Duration) int {
	counts := t.countSince(window)
	return counts[Success] + counts[Error] + counts[Denied]
}

// DenialCount returns the number of denials within the window ending now.
func (t *Tracker) DenialCount(window time.Duration) int {
	return t.countSince(window)[Denied]
}

// ErrorRate returns (errorCount, successCount+errorCount) within the window ending now.
func (t *Tracker) ErrorRate(window time.Duration) (errors, total int) {
	counts := t.countSince(window)
	return counts[Error], counts[Error] + counts[Success]
}

// Reset drops every recorded outcome.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

func (t *Tracker) countSince(window time.Duration) [3]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var counts [3]int
	cutoff := t.now().Add(-window)
	// events are time-ordered; walk back until the cutoff.
	for i := len(t.events) - 1; i >= 0 && !t.events[i].at.Before(cutoff); i-- {
		counts[t.events[i].outcome]++
	}
	return counts
}

// pruneLocked drops events older than retention. Must be called with mu held.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-retention)
	i := 0
	for ; i < len(t.events) && t.events[i].at.Before(cutoff); i++ {
	}
	if i > 0 {
		t.events = append(t.events[:0], t.events[i:]...)
	}
}
