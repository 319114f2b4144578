// Package catalog holds the fixed room inventory of the Comscie Building and
// the schedule it is seeded with.
package catalog

import (
	"slices"
	"time"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/scheduler"
)

// Building is the only building RoomSync manages.
const Building = "Comscie Building"

const imageBase = "https://images.unsplash.com/"

var rooms = []application.Room{
	{ID: "cc101", Name: "CC101", Capacity: 45, Features: []string{"Computer Lab", "Smart Projector", "AC"}, Image: imageBase + "photo-1517694712202-14dd9538aa97?auto=format&fit=crop&w=400&q=80"},
	{ID: "cc102", Name: "CC102", Capacity: 45, Features: []string{"Computer Lab", "Whiteboard", "AC"}, Image: imageBase + "photo-1531482615713-2afd69097998?auto=format&fit=crop&w=400&q=80"},
	{ID: "cc103", Name: "CC103", Capacity: 60, Features: []string{"Lecture Hall", "Audio System", "AC"}, Image: imageBase + "photo-1515378791036-0648a3ef77b2?auto=format&fit=crop&w=400&q=80"},
	{ID: "cc201", Name: "CC201", Capacity: 40, Features: []string{"Lecture Room", "Projector", "Whiteboard"}, Image: imageBase + "photo-1516321318423-f06f85e504b3?auto=format&fit=crop&w=400&q=80"},
	{ID: "cc202", Name: "CC202", Capacity: 40, Features: []string{"Lecture Room", "Smart TV", "AC"}, Image: imageBase + "photo-1581091226825-a6a2a5aee158?auto=format&fit=crop&w=400&q=80"},
	{ID: "cc203", Name: "CC203", Capacity: 35, Features: []string{"Seminar Room", "Round Tables", "AC"}, Image: imageBase + "photo-1498050108023-c5249f4df085?auto=format&fit=crop&w=400&q=80"},
	{ID: "cc301", Name: "CC301", Capacity: 30, Features: []string{"Networking Lab", "Server Racks", "AC"}, Image: imageBase + "photo-1550751827-4bd374c3f58b?auto=format&fit=crop&w=400&q=80"},
	{ID: "cc302", Name: "CC302", Capacity: 30, Features: []string{"Hardware Lab", "Workbenches"}, Image: imageBase + "photo-1593642632823-8f785e67ac73?auto=format&fit=crop&w=400&q=80"},
	{ID: "cc303", Name: "CC303", Capacity: 25, Features: []string{"Research Lab", "Meeting Area", "AC"}, Image: imageBase + "photo-1526374965328-7f61d4dc18c5?auto=format&fit=crop&w=400&q=80"},
}

// Sections lists the class sections offered, year level then block.
var Sections = []string{
	"BSCS 1-A", "BSCS 1-B", "BSCS 1-C", "BSCS 1-D",
	"BSCS 2-A", "BSCS 2-B", "BSCS 2-C", "BSCS 2-D",
	"BSCS 3-A", "BSCS 3-B", "BSCS 3-C", "BSCS 3-D",
	"BSCS 4-A", "BSCS 4-B", "BSCS 4-C", "BSCS 4-D",
}

// Rooms returns a fresh copy of the room inventory.
func Rooms() []application.Room {
	out := make([]application.Room, 0, len(rooms))
	for _, room := range rooms {
		room.Building = Building
		room.Features = slices.Clone(room.Features)
		out = append(out, room)
	}
	return out
}

type seed struct {
	id, room, subject, section, teacher string
	day                                 scheduler.Weekday
	start, end                          scheduler.ClockTime
	color                               int
}

var initial = []seed{
	{"s1", "cc101", "Intro to Programming", "BSCS 1-A", "Dr. Smith", scheduler.Monday, scheduler.Clock(9, 0), scheduler.Clock(10, 30), 0},
	{"s2", "cc101", "Data Structures", "BSCS 2-B", "Prof. Johnson", scheduler.Monday, scheduler.Clock(11, 0), scheduler.Clock(12, 30), 1},
	{"s3", "cc201", "Web Development", "BSCS 3-A", "Dr. Emily", scheduler.Tuesday, scheduler.Clock(14, 0), scheduler.Clock(16, 0), 2},
	{"s4", "cc301", "Computer Networks", "BSCS 3-C", "Mr. Brown", scheduler.Wednesday, scheduler.Clock(9, 0), scheduler.Clock(11, 0), 3},
	{"s5", "cc102", "Database Systems", "BSCS 2-A", "Prof. Davis", scheduler.Tuesday, scheduler.Clock(10, 0), scheduler.Clock(12, 0), 4},
	{"s6", "cc202", "Software Engineering", "BSCS 4-A", "Dr. Wilson", scheduler.Thursday, scheduler.Clock(13, 0), scheduler.Clock(14, 30), 5},
	{"s7", "cc303", "Thesis Defense", "BSCS 4-D", "Panel A", scheduler.Friday, scheduler.Clock(9, 0), scheduler.Clock(12, 0), 6},
	{"s8", "cc103", "Intro to CS", "BSCS 1-C", "Prof. Allen", scheduler.Wednesday, scheduler.Clock(13, 0), scheduler.Clock(15, 0), 0},
	{"s9", "cc201", "Advanced Programming (Makeup)", "BSCS 3-B", "Dr. Smith", scheduler.Saturday, scheduler.Clock(8, 0), scheduler.Clock(12, 0), 7},
}

// Schedule returns the initial timetable, every entry valid for the whole of
// year.
func Schedule(year int) []scheduler.Entry {
	from := scheduler.NewDate(year, time.January, 1)
	to := scheduler.NewDate(year, time.December, 31)

	out := make([]scheduler.Entry, 0, len(initial))
	for _, s := range initial {
		out = append(out, scheduler.Entry{
			ID:        s.id,
			RoomID:    s.room,
			Subject:   s.subject,
			Section:   s.section,
			Teacher:   s.teacher,
			Day:       s.day,
			Start:     s.start,
			End:       s.end,
			StartDate: from,
			EndDate:   to,
			Color:     scheduler.ClassPalette[s.color],
			Kind:      scheduler.KindClass,
		})
	}
	return out
}
