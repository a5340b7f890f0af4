package common

import (
	"sync"
	"time"
)

// Clock supplies the trusted host timestamp every operation is evaluated
// against. Operations receive seconds since the Unix epoch.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current Unix timestamp
func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// NewSystemClock creates the production clock
func NewSystemClock() Clock {
	return SystemClock{}
}

// ManualClock is a settable clock for tests.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a manual clock starting at the given timestamp
func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

// Now returns the configured timestamp
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to an absolute timestamp
func (c *ManualClock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by the given number of seconds
func (c *ManualClock) Advance(secs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += secs
}
