package scheduler

// ActiveAt reports whether entry occupies its room at the given instant. The
// time range is half-open and the date window is inclusive on both ends.
func ActiveAt(entry Entry, day Weekday, at ClockTime, date Date) bool {
	if entry.Day != day {
		return false
	}
	if at < entry.Start || at >= entry.End {
		return false
	}
	return date.Within(entry.StartDate, entry.EndDate)
}

// OccupantsAt returns the entries active in the time context, preserving the
// input order.
func OccupantsAt(entries []Entry, tc TimeContext) []Entry {
	if tc.Closed() {
		return nil
	}
	var active []Entry
	for _, entry := range entries {
		if ActiveAt(entry, tc.Day, tc.Time, tc.Date) {
			active = append(active, entry)
		}
	}
	return active
}

// OccupantOf returns the first active entry for the room, if any.
func OccupantOf(roomID string, entries []Entry, tc TimeContext) (Entry, bool) {
	if tc.Closed() {
		return Entry{}, false
	}
	for _, entry := range entries {
		if entry.RoomID == roomID && ActiveAt(entry, tc.Day, tc.Time, tc.Date) {
			return entry, true
		}
	}
	return Entry{}, false
}

// IsRoomFree reports whether no entry for the room is active.
func IsRoomFree(roomID string, entries []Entry, tc TimeContext) bool {
	_, busy := OccupantOf(roomID, entries, tc)
	return !busy
}

// NextUpcoming returns the entry for the room that starts soonest after the
// current time on the same day. Ties on start time go to the entry that
// appears first in entries.
func NextUpcoming(roomID string, entries []Entry, tc TimeContext) (Entry, bool) {
	if tc.Closed() {
		return Entry{}, false
	}
	var (
		next  Entry
		found bool
	)
	for _, entry := range entries {
		if entry.RoomID != roomID || entry.Day != tc.Day {
			continue
		}
		if entry.Start <= tc.Time {
			continue
		}
		if !tc.Date.Within(entry.StartDate, entry.EndDate) {
			continue
		}
		if !found || entry.Start < next.Start {
			next = entry
			found = true
		}
	}
	return next, found
}

// Occupancy maps every room to its active entry, or nil when the room is free.
func Occupancy(roomIDs []string, entries []Entry, tc TimeContext) map[string]*Entry {
	result := make(map[string]*Entry, len(roomIDs))
	for _, id := range roomIDs {
		result[id] = nil
	}
	for _, entry := range OccupantsAt(entries, tc) {
		current, known := result[entry.RoomID]
		if !known || current != nil {
			continue
		}
		occupant := entry
		result[entry.RoomID] = &occupant
	}
	return result
}
