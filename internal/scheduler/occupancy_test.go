package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveAt(t *testing.T) {
	entry := cc101Monday()
	date := NewDate(2025, 3, 3)

	assert.True(t, ActiveAt(entry, Monday, Clock(9, 0), date), "start is inclusive")
	assert.True(t, ActiveAt(entry, Monday, Clock(10, 29), date))
	assert.False(t, ActiveAt(entry, Monday, Clock(10, 30), date), "end is exclusive")
	assert.False(t, ActiveAt(entry, Monday, Clock(8, 59), date))
	assert.False(t, ActiveAt(entry, Tuesday, Clock(9, 30), date))
	assert.True(t, ActiveAt(entry, Monday, Clock(9, 30), yearStart), "first day of window")
	assert.True(t, ActiveAt(entry, Monday, Clock(9, 30), yearEnd), "last day of window")
	assert.False(t, ActiveAt(entry, Monday, Clock(9, 30), NewDate(2026, 1, 5)))
}

func TestOccupancy(t *testing.T) {
	other := Entry{
		ID: "s2", RoomID: "cc101", Subject: "Data Structures", Day: Monday,
		Start: Clock(11, 0), End: Clock(12, 30), StartDate: yearStart, EndDate: yearEnd,
	}
	lab := Entry{
		ID: "s5", RoomID: "cc102", Subject: "Database Systems", Day: Monday,
		Start: Clock(10, 0), End: Clock(12, 0), StartDate: yearStart, EndDate: yearEnd,
	}
	entries := []Entry{cc101Monday(), other, lab}
	rooms := []string{"cc101", "cc102", "cc103"}

	t.Run("maps busy rooms to their occupant", func(t *testing.T) {
		tc := TimeContext{Day: Monday, Time: Clock(10, 0), Date: NewDate(2025, 3, 3)}
		got := Occupancy(rooms, entries, tc)

		require.Len(t, got, 3)
		require.NotNil(t, got["cc101"])
		assert.Equal(t, "s1", got["cc101"].ID)
		require.NotNil(t, got["cc102"])
		assert.Equal(t, "s5", got["cc102"].ID)
		assert.Nil(t, got["cc103"])
	})

	t.Run("room frees up at end time", func(t *testing.T) {
		tc := TimeContext{Day: Monday, Time: Clock(10, 30), Date: NewDate(2025, 3, 3)}
		assert.True(t, IsRoomFree("cc101", entries, tc))
		assert.False(t, IsRoomFree("cc102", entries, tc))
		assert.Len(t, OccupantsAt(entries, tc), 1)
	})

	t.Run("closed sunday reports every room free", func(t *testing.T) {
		tc := TimeContext{Day: Sunday, Time: Clock(10, 0), Date: NewDate(2025, 3, 2)}
		for id, occupant := range Occupancy(rooms, entries, tc) {
			assert.Nil(t, occupant, id)
		}
	})
}

func TestNextUpcoming(t *testing.T) {
	later := Entry{
		ID: "s2", RoomID: "cc101", Subject: "Data Structures", Day: Monday,
		Start: Clock(11, 0), End: Clock(12, 30), StartDate: yearStart, EndDate: yearEnd,
	}
	afternoon := Entry{
		ID: "s3", RoomID: "cc101", Subject: "Algorithms", Day: Monday,
		Start: Clock(14, 0), End: Clock(15, 0), StartDate: yearStart, EndDate: yearEnd,
	}
	expired := Entry{
		ID: "s4", RoomID: "cc101", Subject: "Old Course", Day: Monday,
		Start: Clock(10, 45), End: Clock(11, 0), StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 12, 31),
	}
	entries := []Entry{afternoon, cc101Monday(), expired, later}
	date := NewDate(2025, 3, 3)

	t.Run("picks the earliest later start", func(t *testing.T) {
		next, ok := NextUpcoming("cc101", entries, TimeContext{Day: Monday, Time: Clock(9, 30), Date: date})
		require.True(t, ok)
		assert.Equal(t, "s2", next.ID)
	})

	t.Run("an entry starting now is not upcoming", func(t *testing.T) {
		next, ok := NextUpcoming("cc101", entries, TimeContext{Day: Monday, Time: Clock(11, 0), Date: date})
		require.True(t, ok)
		assert.Equal(t, "s3", next.ID)
	})

	t.Run("nothing left today", func(t *testing.T) {
		_, ok := NextUpcoming("cc101", entries, TimeContext{Day: Monday, Time: Clock(14, 0), Date: date})
		assert.False(t, ok)
	})

	t.Run("other days are ignored", func(t *testing.T) {
		_, ok := NextUpcoming("cc101", entries, TimeContext{Day: Tuesday, Time: Clock(8, 0), Date: date.AddDays(1)})
		assert.False(t, ok)
	})

	t.Run("ties go to the first entry", func(t *testing.T) {
		twin := later
		twin.ID = "s2b"
		next, ok := NextUpcoming("cc101", []Entry{later, twin}, TimeContext{Day: Monday, Time: Clock(8, 0), Date: date})
		require.True(t, ok)
		assert.Equal(t, "s2", next.ID)
	})
}
