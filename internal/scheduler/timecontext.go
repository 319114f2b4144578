package scheduler

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// SundayPolicy decides how a Sunday wall clock is presented to occupancy
// queries.
type SundayPolicy string

const (
	// SundayAsMonday reports Sunday as Monday so the dashboard always shows a
	// teaching day. The calendar date is left untouched.
	SundayAsMonday SundayPolicy = "monday"
	// SundayClosed reports Sunday as is; every room is free.
	SundayClosed SundayPolicy = "closed"
)

// ParseSundayPolicy accepts "monday" or "closed". An empty value selects
// SundayAsMonday.
func ParseSundayPolicy(value string) (SundayPolicy, error) {
	switch SundayPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", SundayAsMonday:
		return SundayAsMonday, nil
	case SundayClosed:
		return SundayClosed, nil
	default:
		return "", fmt.Errorf("scheduler: unknown sunday policy %q", value)
	}
}

// Day returns the weekday occupancy queries use for a calendar weekday.
func (p SundayPolicy) Day(day Weekday) Weekday {
	if day == Sunday && p != SundayClosed {
		return Monday
	}
	return day
}

// TimeContext is the instant occupancy queries are evaluated at.
type TimeContext struct {
	Day  Weekday
	Time ClockTime
	Date Date
}

// Closed reports whether the context falls on a day without teaching.
func (tc TimeContext) Closed() bool {
	return tc.Day == Sunday
}

func (tc TimeContext) String() string {
	return fmt.Sprintf("%s %s %s", tc.Day, tc.Date, tc.Time)
}

// ContextAt derives a TimeContext from a wall clock reading in t's location.
func ContextAt(t time.Time, policy SundayPolicy) TimeContext {
	return TimeContext{
		Day:  policy.Day(WeekdayOf(t.Weekday())),
		Time: ClockTimeOf(t),
		Date: DateOf(t),
	}
}

// Provider caches the current TimeContext and recomputes it on Refresh. It is
// safe for concurrent use.
type Provider struct {
	now      func() time.Time
	location *time.Location
	policy   SundayPolicy

	current atomic.Pointer[TimeContext]
}

// NewProvider builds a provider reading now in loc. Nil arguments fall back to
// time.Now and time.Local.
func NewProvider(now func() time.Time, loc *time.Location, policy SundayPolicy) *Provider {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if policy == "" {
		policy = SundayAsMonday
	}
	p := &Provider{now: now, location: loc, policy: policy}
	p.Refresh()
	return p
}

// Policy returns the configured Sunday handling.
func (p *Provider) Policy() SundayPolicy {
	return p.policy
}

// Refresh reads the clock and replaces the cached context.
func (p *Provider) Refresh() TimeContext {
	tc := ContextAt(p.now().In(p.location), p.policy)
	p.current.Store(&tc)
	return tc
}

// Current returns the most recently refreshed context.
func (p *Provider) Current() TimeContext {
	if tc := p.current.Load(); tc != nil {
		return *tc
	}
	return p.Refresh()
}
