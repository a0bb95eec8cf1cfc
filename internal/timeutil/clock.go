package timeutil

import (
	"sync"
	"time"
)

// Clock is the injectable current-time provider. Everything that computes
// "today" or a countdown goes through it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock, truncated to whole seconds.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().Truncate(time.Second) }

// ManualClock is a settable clock for tests and the seeding tool.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ResolveLocation loads an IANA zone. An empty or unknown name falls back to
// the host zone; ok is false only when a non-empty name failed to load.
func ResolveLocation(name string) (loc *time.Location, ok bool) {
	if name == "" {
		return time.Local, true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, false
	}
	return loc, true
}

// Ptr returns a pointer to a copy of t.
func Ptr(t time.Time) *time.Time { return &t }
