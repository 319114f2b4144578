package scheduler

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMakeup(t *testing.T) {
	date := NewDate(2025, 3, 8)
	entry := BuildMakeup("m1", SingleDayCandidate{RoomID: "cc201", Date: date, Start: Clock(8, 0), End: Clock(12, 0)}, Details{
		Subject:  " Advanced Programming ",
		Section:  "BSCS 3-B",
		Teacher:  "Dr. Smith",
		BookedBy: "u-1",
	})

	assert.Equal(t, "Advanced Programming (Makeup)", entry.Subject)
	assert.Equal(t, Saturday, entry.Day)
	assert.Equal(t, date, entry.StartDate)
	assert.Equal(t, date, entry.EndDate)
	assert.Equal(t, MakeupColor, entry.Color)
	assert.Equal(t, KindMakeup, entry.Kind)
	assert.True(t, entry.IsMakeup())

	again := BuildMakeup("m2", SingleDayCandidate{RoomID: "cc201", Date: date, Start: Clock(13, 0), End: Clock(14, 0)}, Details{Subject: entry.Subject})
	assert.Equal(t, "Advanced Programming (Makeup)", again.Subject, "suffix is not doubled")
}

func TestBuildClass(t *testing.T) {
	entry := BuildClass("c1", recurring("cc101", Monday, Clock(9, 0), Clock(10, 30)), Details{Subject: "Intro", Teacher: "Dr. Smith"}, nil)

	assert.Equal(t, KindClass, entry.Kind)
	assert.False(t, entry.IsMakeup())
	assert.True(t, slices.Contains(ClassPalette, entry.Color))
	assert.Equal(t, "09:00-10:30", entry.TimeRange())
}

func TestIsMakeupFallsBackToSubject(t *testing.T) {
	legacy := Entry{Subject: "Advanced Programming (Makeup)"}
	assert.True(t, legacy.IsMakeup())
}
