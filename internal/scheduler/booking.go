package scheduler

import (
	"math/rand/v2"
	"strings"
)

// ClassPalette holds the display colors handed out to recurring classes.
var ClassPalette = []string{
	"bg-blue-100 border-blue-300 text-blue-800",
	"bg-green-100 border-green-300 text-green-800",
	"bg-purple-100 border-purple-300 text-purple-800",
	"bg-yellow-100 border-yellow-300 text-yellow-800",
	"bg-red-100 border-red-300 text-red-800",
	"bg-indigo-100 border-indigo-300 text-indigo-800",
	"bg-orange-100 border-orange-300 text-orange-800",
	"bg-teal-100 border-teal-300 text-teal-800",
	"bg-pink-100 border-pink-300 text-pink-800",
	"bg-cyan-100 border-cyan-300 text-cyan-800",
}

// MakeupColor is reserved for makeup bookings.
const MakeupColor = "bg-pink-100 border-pink-300 text-pink-800"

// ColorPicker chooses a palette color for a new class.
type ColorPicker func() string

// RandomColor picks uniformly from ClassPalette.
func RandomColor() string {
	return ClassPalette[rand.IntN(len(ClassPalette))]
}

// Details carries the descriptive fields of a booking.
type Details struct {
	Subject  string
	Section  string
	Teacher  string
	BookedBy string
}

// BuildClass turns an accepted recurring candidate into an entry.
func BuildClass(id string, cand RecurringCandidate, details Details, pick ColorPicker) Entry {
	if pick == nil {
		pick = RandomColor
	}
	return Entry{
		ID:        id,
		RoomID:    cand.RoomID,
		Subject:   strings.TrimSpace(details.Subject),
		Section:   strings.TrimSpace(details.Section),
		Teacher:   strings.TrimSpace(details.Teacher),
		Day:       cand.Day,
		Start:     cand.Start,
		End:       cand.End,
		StartDate: cand.StartDate,
		EndDate:   cand.EndDate,
		Color:     pick(),
		Kind:      KindClass,
		BookedBy:  details.BookedBy,
	}
}

// BuildMakeup turns an accepted single-day candidate into an entry whose
// validity window is exactly the booked date.
func BuildMakeup(id string, cand SingleDayCandidate, details Details) Entry {
	subject := strings.TrimSpace(details.Subject)
	if !strings.HasSuffix(subject, MakeupSuffix) {
		subject += MakeupSuffix
	}
	return Entry{
		ID:        id,
		RoomID:    cand.RoomID,
		Subject:   subject,
		Section:   strings.TrimSpace(details.Section),
		Teacher:   strings.TrimSpace(details.Teacher),
		Day:       cand.Day(),
		Start:     cand.Start,
		End:       cand.End,
		StartDate: cand.Date,
		EndDate:   cand.Date,
		Color:     MakeupColor,
		Kind:      KindMakeup,
		BookedBy:  details.BookedBy,
	}
}
