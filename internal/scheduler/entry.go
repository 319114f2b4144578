package scheduler

import "strings"

// Kind distinguishes recurring admin classes from single-day teacher bookings.
type Kind string

const (
	KindClass  Kind = "class"
	KindMakeup Kind = "makeup"
)

// MakeupSuffix is appended to the subject of every makeup booking.
const MakeupSuffix = " (Makeup)"

// Entry is one row of the room schedule: a weekly time slot in a room that is
// valid between two calendar dates, both inclusive.
type Entry struct {
	ID        string
	RoomID    string
	Subject   string
	Section   string
	Teacher   string
	Day       Weekday
	Start     ClockTime
	End       ClockTime
	StartDate Date
	EndDate   Date
	Color     string
	Kind      Kind
	BookedBy  string
}

// IsMakeup reports whether the entry was created as a makeup booking. Entries
// loaded from older data carry no Kind, so the subject marker is honoured too.
func (e Entry) IsMakeup() bool {
	if e.Kind == KindMakeup {
		return true
	}
	return strings.Contains(e.Subject, strings.TrimSpace(MakeupSuffix))
}

// TimeRange renders the slot as "HH:MM-HH:MM".
func (e Entry) TimeRange() string {
	return e.Start.String() + "-" + e.End.String()
}

func overlaps(aStart, aEnd, bStart, bEnd ClockTime) bool {
	return aStart < bEnd && aEnd > bStart
}

func datesOverlap(aFrom, aTo, bFrom, bTo Date) bool {
	return !aFrom.After(bTo) && !aTo.Before(bFrom)
}
