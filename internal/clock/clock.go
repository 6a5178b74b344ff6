package clock

import (
	"sync"
	"time"
)

// Clock abstracts time to keep timers and sessions deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock; log timestamps are written in local time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Fake is a manually advanced clock.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a fake clock fixed at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
