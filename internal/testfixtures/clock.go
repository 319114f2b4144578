package testfixtures

import (
	"sync"
	"time"

	"github.com/example/roomsync/internal/scheduler"
)

// Clock is a manually driven time source.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClock starts a clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now reports the clock time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Current is an alias of Now used where the call reads better.
func (c *Clock) Current() time.Time {
	return c.Now()
}

// NowFunc returns Now for injection. A nil clock falls back to time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// SetSlot moves the clock to day and at within the week of ReferenceTime,
// which starts on Monday. Sunday maps to the day before that Monday.
func (c *Clock) SetSlot(day scheduler.Weekday, at scheduler.ClockTime) time.Time {
	ref := ReferenceTime()
	monday := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	offset := int(day) - int(scheduler.Monday)
	t := monday.AddDate(0, 0, offset).Add(time.Duration(at) * time.Minute)
	c.Set(t)
	return t
}

// Context returns the scheduling view of the current clock time.
func (c *Clock) Context(policy scheduler.SundayPolicy) scheduler.TimeContext {
	return scheduler.ContextAt(c.Now(), policy)
}
