package recurrence

import (
	"errors"
	"sort"

	"github.com/example/roomsync/internal/scheduler"
)

// MaxWindowDays bounds how many days a single expansion may cover.
const MaxWindowDays = 366

// ErrInvalidWindow indicates the requested range is empty or reversed.
var ErrInvalidWindow = errors.New("recurrence: window start must not be after window end")

// ErrWindowTooLarge indicates the requested range exceeds MaxWindowDays.
var ErrWindowTooLarge = errors.New("recurrence: window exceeds maximum length")

// Window is an inclusive range of calendar dates.
type Window struct {
	From scheduler.Date
	To   scheduler.Date
}

// Occurrence is one dated meeting of a schedule entry.
type Occurrence struct {
	EntryID string
	RoomID  string
	Subject string
	Date    scheduler.Date
	Day     scheduler.Weekday
	Start   scheduler.ClockTime
	End     scheduler.ClockTime
}

// Engine expands weekly entries into dated occurrences.
type Engine struct {
	maxDays int
}

// NewEngine constructs an Engine. A non-positive maxDays selects MaxWindowDays.
func NewEngine(maxDays int) *Engine {
	if maxDays <= 0 {
		maxDays = MaxWindowDays
	}
	return &Engine{maxDays: maxDays}
}

// Expand produces the occurrences of entries that fall within the window.
//
// An entry meets on every date whose weekday equals entry.Day and which lies
// inside both the window and the entry's own validity range. Results are
// ordered by date, then start time, then input order.
func (e *Engine) Expand(entries []scheduler.Entry, window Window) ([]Occurrence, error) {
	if window.From.After(window.To) {
		return nil, ErrInvalidWindow
	}
	maxDays := e.maxDays
	if maxDays <= 0 {
		maxDays = MaxWindowDays
	}
	if window.From.AddDays(maxDays - 1).Before(window.To) {
		return nil, ErrWindowTooLarge
	}

	occurrences := make([]Occurrence, 0)
	for _, entry := range entries {
		if !entry.Day.Teaching() {
			continue
		}

		lower := window.From
		if entry.StartDate.After(lower) {
			lower = entry.StartDate
		}
		upper := window.To
		if entry.EndDate.Before(upper) {
			upper = entry.EndDate
		}
		if lower.After(upper) {
			continue
		}

		for current := firstOnWeekday(lower, entry.Day); !current.After(upper); current = current.AddDays(7) {
			occurrences = append(occurrences, Occurrence{
				EntryID: entry.ID,
				RoomID:  entry.RoomID,
				Subject: entry.Subject,
				Date:    current,
				Day:     entry.Day,
				Start:   entry.Start,
				End:     entry.End,
			})
		}
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		if c := occurrences[i].Date.Compare(occurrences[j].Date); c != 0 {
			return c < 0
		}
		return occurrences[i].Start < occurrences[j].Start
	})

	return occurrences, nil
}

func firstOnWeekday(from scheduler.Date, day scheduler.Weekday) scheduler.Date {
	offset := (int(day) - int(from.Weekday()) + 7) % 7
	return from.AddDays(offset)
}
