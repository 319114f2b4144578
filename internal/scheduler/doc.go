// Package scheduler holds the room occupancy and booking conflict rules.
//
// Everything here is pure: functions take a snapshot of schedule entries and
// never mutate it. Times of day are half-open intervals [Start, End) while
// date windows are closed [StartDate, EndDate]. A candidate conflicts with an
// existing entry only when room, weekday, date window and time range all
// overlap.
package scheduler
