// Package sched provides the timer and serialization primitives the feed core
// is built on: a Scheduler that runs a callback after a delay and returns a
// cancel handle, a manual Scheduler for tests, and a Serial executor.
package sched

import (
	"sync"
	"time"
)

// Timer is a cancellation handle for a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running if it has not started yet.
	// It reports whether the call stopped the timer.
	Stop() bool
}

// Scheduler runs fn once after d elapses. Callbacks run on their own
// goroutine (Real) or on the goroutine advancing the clock (Manual); callers
// must not assume either.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Real schedules with the runtime timer.
type Real struct{}

// AfterFunc implements Scheduler.
func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Now implements Scheduler.
func (Real) Now() time.Time {
	return time.Now()
}

// Executor runs fn in some serialized context.
type Executor func(fn func())

// Inline runs fn directly on the calling goroutine.
func Inline(fn func()) {
	fn()
}

// Serial runs functions one at a time under a single mutex. The zero value is
// ready to use. Functions passed to Do must not call Do again.
type Serial struct {
	mu sync.Mutex
}

// Do runs fn while holding the lock.
func (s *Serial) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Stop stops t if it is non-nil. It is safe to call with a nil Timer.
func Stop(t Timer) {
	if t != nil {
		t.Stop()
	}
}
