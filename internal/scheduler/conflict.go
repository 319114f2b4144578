package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeOrder is matched by rejections where end <= start.
	ErrInvalidTimeOrder = errors.New("scheduler: end time must be after start time")
	// ErrInvalidDateOrder is matched by rejections where the start date is after the end date.
	ErrInvalidDateOrder = errors.New("scheduler: start date cannot be after end date")
	// ErrInvalidDay is matched by rejections for days outside the teaching week.
	ErrInvalidDay = errors.New("scheduler: day is not a teaching day")
	// ErrConflict is matched by rejections caused by an overlapping entry.
	ErrConflict = errors.New("scheduler: conflicting booking")
)

// Reason identifies which rule rejected a candidate.
type Reason string

const (
	ReasonInvalidTimeOrder Reason = "invalid_time_order"
	ReasonInvalidDateOrder Reason = "invalid_date_order"
	ReasonInvalidDay       Reason = "invalid_day"
	ReasonConflict         Reason = "conflict"
)

// RejectionError explains why a candidate booking was refused. Message is
// suitable for showing to the user unchanged.
type RejectionError struct {
	Reason   Reason
	Message  string
	Conflict *Entry
}

func (e *RejectionError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Is lets errors.Is match a rejection against the package sentinels.
func (e *RejectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Reason {
	case ReasonInvalidTimeOrder:
		return target == ErrInvalidTimeOrder
	case ReasonInvalidDateOrder:
		return target == ErrInvalidDateOrder
	case ReasonInvalidDay:
		return target == ErrInvalidDay
	case ReasonConflict:
		return target == ErrConflict
	}
	return false
}

// RecurringCandidate is an administrator class that repeats weekly on Day
// between StartDate and EndDate.
type RecurringCandidate struct {
	RoomID    string
	Day       Weekday
	Start     ClockTime
	End       ClockTime
	StartDate Date
	EndDate   Date
}

// SingleDayCandidate is a teacher makeup booking for one calendar date. Its
// weekday is derived from Date.
type SingleDayCandidate struct {
	RoomID string
	Date   Date
	Start  ClockTime
	End    ClockTime
}

// Day returns the weekday Date falls on.
func (c SingleDayCandidate) Day() Weekday {
	return c.Date.Weekday()
}

// CheckRecurring returns nil when the candidate may be stored alongside
// existing, or a *RejectionError describing the first rule it breaks.
func CheckRecurring(existing []Entry, cand RecurringCandidate) error {
	if cand.End <= cand.Start {
		return rejectTimeOrder()
	}
	if cand.StartDate.After(cand.EndDate) {
		return &RejectionError{Reason: ReasonInvalidDateOrder, Message: "Start date cannot be after end date."}
	}
	if !cand.Day.Teaching() {
		return rejectDay(cand.Day)
	}

	for _, item := range existing {
		if item.RoomID != cand.RoomID || item.Day != cand.Day {
			continue
		}
		if !datesOverlap(cand.StartDate, cand.EndDate, item.StartDate, item.EndDate) {
			continue
		}
		if !overlaps(cand.Start, cand.End, item.Start, item.End) {
			continue
		}
		conflict := item
		return &RejectionError{
			Reason: ReasonConflict,
			Message: fmt.Sprintf(
				"Conflict detected! This room is already booked for this time/date range: %s on %s %s (%s to %s).",
				item.Subject, item.Day, item.TimeRange(), item.StartDate, item.EndDate,
			),
			Conflict: &conflict,
		}
	}
	return nil
}

// CheckSingleDay returns nil when the candidate may be stored alongside
// existing, or a *RejectionError describing the first rule it breaks.
func CheckSingleDay(existing []Entry, cand SingleDayCandidate) error {
	if cand.End <= cand.Start {
		return rejectTimeOrder()
	}
	day := cand.Day()
	if !day.Teaching() {
		return rejectDay(day)
	}

	for _, item := range existing {
		if item.RoomID != cand.RoomID || item.Day != day {
			continue
		}
		if !cand.Date.Within(item.StartDate, item.EndDate) {
			continue
		}
		if !overlaps(cand.Start, cand.End, item.Start, item.End) {
			continue
		}
		conflict := item
		return &RejectionError{
			Reason:   ReasonConflict,
			Message:  fmt.Sprintf("Conflict detected! Room is occupied on %s, %s at this time.", day, cand.Date),
			Conflict: &conflict,
		}
	}
	return nil
}

func rejectTimeOrder() error {
	return &RejectionError{Reason: ReasonInvalidTimeOrder, Message: "End time must be after start time."}
}

func rejectDay(day Weekday) error {
	return &RejectionError{
		Reason:  ReasonInvalidDay,
		Message: fmt.Sprintf("Rooms cannot be booked on %s.", day),
	}
}
