package scheduler

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	yearStart = NewDate(2025, 1, 1)
	yearEnd   = NewDate(2025, 12, 31)
)

func cc101Monday() Entry {
	return Entry{
		ID:        "s1",
		RoomID:    "cc101",
		Subject:   "Intro to Programming",
		Teacher:   "Dr. Smith",
		Day:       Monday,
		Start:     Clock(9, 0),
		End:       Clock(10, 30),
		StartDate: yearStart,
		EndDate:   yearEnd,
	}
}

func recurring(room string, day Weekday, start, end ClockTime) RecurringCandidate {
	return RecurringCandidate{RoomID: room, Day: day, Start: start, End: end, StartDate: yearStart, EndDate: yearEnd}
}

func TestCheckRecurring(t *testing.T) {
	store := []Entry{cc101Monday()}

	tests := []struct {
		name   string
		cand   RecurringCandidate
		reason Reason
	}{
		{"touching end boundary is accepted", recurring("cc101", Monday, Clock(10, 30), Clock(12, 0)), ""},
		{"touching start boundary is accepted", recurring("cc101", Monday, Clock(7, 30), Clock(9, 0)), ""},
		{"partial overlap is rejected", recurring("cc101", Monday, Clock(10, 0), Clock(11, 0)), ReasonConflict},
		{"identical range is rejected", recurring("cc101", Monday, Clock(9, 0), Clock(10, 30)), ReasonConflict},
		{"enclosing range is rejected", recurring("cc101", Monday, Clock(8, 0), Clock(12, 0)), ReasonConflict},
		{"different room is accepted", recurring("cc102", Monday, Clock(9, 0), Clock(10, 30)), ""},
		{"different day is accepted", recurring("cc101", Tuesday, Clock(9, 0), Clock(10, 30)), ""},
		{"end before start is rejected", recurring("cc102", Monday, Clock(11, 0), Clock(10, 0)), ReasonInvalidTimeOrder},
		{"zero length is rejected", recurring("cc102", Monday, Clock(11, 0), Clock(11, 0)), ReasonInvalidTimeOrder},
		{"sunday is rejected", recurring("cc102", Sunday, Clock(9, 0), Clock(10, 0)), ReasonInvalidDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRecurring(store, tt.cand)
			if tt.reason == "" {
				require.NoError(t, err)
				return
			}
			var rej *RejectionError
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tt.reason, rej.Reason)
		})
	}
}

func TestCheckRecurring_DateWindows(t *testing.T) {
	existing := Entry{
		ID: "e1", RoomID: "cc201", Subject: "Web Development", Day: Tuesday,
		Start: Clock(14, 0), End: Clock(16, 0),
		StartDate: NewDate(2025, 3, 1), EndDate: NewDate(2025, 3, 31),
	}
	store := []Entry{existing}

	t.Run("windows sharing one day conflict", func(t *testing.T) {
		cand := RecurringCandidate{
			RoomID: "cc201", Day: Tuesday, Start: Clock(15, 0), End: Clock(17, 0),
			StartDate: NewDate(2025, 3, 31), EndDate: NewDate(2025, 6, 30),
		}
		err := CheckRecurring(store, cand)
		require.ErrorIs(t, err, ErrConflict)

		var rej *RejectionError
		require.ErrorAs(t, err, &rej)
		require.NotNil(t, rej.Conflict)
		assert.Equal(t, "e1", rej.Conflict.ID)
		assert.Contains(t, rej.Message, "Tuesday")
		assert.Contains(t, rej.Message, "2025-03-01 to 2025-03-31")
	})

	t.Run("window ending the day before is accepted", func(t *testing.T) {
		cand := RecurringCandidate{
			RoomID: "cc201", Day: Tuesday, Start: Clock(15, 0), End: Clock(17, 0),
			StartDate: NewDate(2025, 1, 1), EndDate: NewDate(2025, 2, 28),
		}
		assert.NoError(t, CheckRecurring(store, cand))
	})

	t.Run("start date after end date is rejected before conflicts", func(t *testing.T) {
		cand := RecurringCandidate{
			RoomID: "cc201", Day: Tuesday, Start: Clock(14, 0), End: Clock(16, 0),
			StartDate: NewDate(2025, 4, 1), EndDate: NewDate(2025, 3, 1),
		}
		err := CheckRecurring(store, cand)
		require.ErrorIs(t, err, ErrInvalidDateOrder)
		assert.Equal(t, "Start date cannot be after end date.", err.Error())
	})

	t.Run("time order is checked before date order", func(t *testing.T) {
		cand := RecurringCandidate{
			RoomID: "cc201", Day: Tuesday, Start: Clock(16, 0), End: Clock(14, 0),
			StartDate: NewDate(2025, 4, 1), EndDate: NewDate(2025, 3, 1),
		}
		err := CheckRecurring(store, cand)
		require.ErrorIs(t, err, ErrInvalidTimeOrder)
		assert.Equal(t, "End time must be after start time.", err.Error())
	})
}

func TestCheckSingleDay(t *testing.T) {
	store := []Entry{cc101Monday()}

	t.Run("saturday never matches a monday class", func(t *testing.T) {
		saturday := NewDate(2025, 3, 8)
		require.Equal(t, Saturday, saturday.Weekday())

		for _, slot := range [][2]ClockTime{{Clock(9, 0), Clock(10, 30)}, {Clock(7, 0), Clock(20, 0)}} {
			err := CheckSingleDay(store, SingleDayCandidate{RoomID: "cc101", Date: saturday, Start: slot[0], End: slot[1]})
			assert.NoError(t, err)
		}
	})

	t.Run("monday inside the validity window conflicts", func(t *testing.T) {
		monday := NewDate(2025, 3, 3)
		err := CheckSingleDay(store, SingleDayCandidate{RoomID: "cc101", Date: monday, Start: Clock(10, 0), End: Clock(11, 0)})
		require.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, "Conflict detected! Room is occupied on Monday, 2025-03-03 at this time.", err.Error())
	})

	t.Run("monday outside the validity window is accepted", func(t *testing.T) {
		monday := NewDate(2026, 1, 5)
		require.Equal(t, Monday, monday.Weekday())
		err := CheckSingleDay(store, SingleDayCandidate{RoomID: "cc101", Date: monday, Start: Clock(9, 0), End: Clock(10, 30)})
		assert.NoError(t, err)
	})

	t.Run("touching boundary is accepted", func(t *testing.T) {
		monday := NewDate(2025, 3, 3)
		err := CheckSingleDay(store, SingleDayCandidate{RoomID: "cc101", Date: monday, Start: Clock(10, 30), End: Clock(11, 0)})
		assert.NoError(t, err)
	})

	t.Run("end not after start is rejected", func(t *testing.T) {
		err := CheckSingleDay(store, SingleDayCandidate{RoomID: "cc101", Date: NewDate(2025, 3, 8), Start: Clock(11, 0), End: Clock(11, 0)})
		assert.ErrorIs(t, err, ErrInvalidTimeOrder)
	})

	t.Run("sunday is rejected", func(t *testing.T) {
		err := CheckSingleDay(store, SingleDayCandidate{RoomID: "cc101", Date: NewDate(2025, 3, 2), Start: Clock(9, 0), End: Clock(10, 0)})
		assert.ErrorIs(t, err, ErrInvalidDay)
	})
}

func TestRejectionError_Is(t *testing.T) {
	err := error(&RejectionError{Reason: ReasonConflict, Message: "x"})
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrInvalidTimeOrder))
}

// Random candidates are checked against a brute-force overlap oracle, and
// accepted ones are appended so the store keeps growing. Afterwards no two
// stored entries may collide.
func TestCheckRecurring_MatchesOracle(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	rooms := []string{"cc101", "cc102", "cc103"}
	var store []Entry

	randomDate := func() Date { return NewDate(2025, 1, 1).AddDays(rng.IntN(365)) }
	randomTime := func() ClockTime { return Clock(7+rng.IntN(12), 15*rng.IntN(4)) }

	for i := 0; i < 2000; i++ {
		from, to := randomDate(), randomDate()
		if rng.IntN(10) > 0 && from.After(to) {
			from, to = to, from
		}
		cand := RecurringCandidate{
			RoomID:    rooms[rng.IntN(len(rooms))],
			Day:       TeachingDays[rng.IntN(len(TeachingDays))],
			Start:     randomTime(),
			End:       randomTime(),
			StartDate: from,
			EndDate:   to,
		}

		wantOK := cand.End > cand.Start && !cand.StartDate.After(cand.EndDate)
		if wantOK {
			for _, item := range store {
				sameSlot := item.RoomID == cand.RoomID && item.Day == cand.Day
				datesMeet := cand.StartDate.String() <= item.EndDate.String() && cand.EndDate.String() >= item.StartDate.String()
				timesMeet := cand.Start.String() < item.End.String() && cand.End.String() > item.Start.String()
				if sameSlot && datesMeet && timesMeet {
					wantOK = false
					break
				}
			}
		}

		err := CheckRecurring(store, cand)
		require.Equal(t, wantOK, err == nil, "candidate %d: %+v err=%v", i, cand, err)
		if err == nil {
			store = append(store, BuildClass("e", cand, Details{Subject: "x"}, func() string { return "" }))
		}
	}

	require.NotEmpty(t, store)
	for i := range store {
		for j := i + 1; j < len(store); j++ {
			a, b := store[i], store[j]
			if a.RoomID != b.RoomID || a.Day != b.Day {
				continue
			}
			if datesOverlap(a.StartDate, a.EndDate, b.StartDate, b.EndDate) {
				assert.False(t, overlaps(a.Start, a.End, b.Start, b.End), "%+v overlaps %+v", a, b)
			}
		}
	}
}
