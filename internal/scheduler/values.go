package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Weekday identifies a day of the teaching week. Sunday exists so that a
// calendar date can always be mapped to a weekday, but no stored entry may
// carry it.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// TeachingDays lists the weekdays an entry may be scheduled on, in week order.
var TeachingDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var (
	// ErrInvalidWeekday is returned when a weekday name cannot be parsed.
	ErrInvalidWeekday = errors.New("scheduler: invalid weekday")
	// ErrInvalidClockTime is returned when a time of day is not in HH:MM form.
	ErrInvalidClockTime = errors.New("scheduler: invalid clock time")
	// ErrInvalidDate is returned when a calendar date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("scheduler: invalid date")
)

func (d Weekday) String() string {
	if d < Sunday || d > Saturday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Valid reports whether d is one of the seven known weekdays.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Teaching reports whether d may be used on a stored entry.
func (d Weekday) Teaching() bool {
	return d >= Monday && d <= Saturday
}

// ParseWeekday accepts full English weekday names, case-insensitively.
func ParseWeekday(value string) (Weekday, error) {
	trimmed := strings.TrimSpace(value)
	for i, name := range weekdayNames {
		if strings.EqualFold(trimmed, name) {
			return Weekday(i), nil
		}
	}
	return Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, value)
}

// WeekdayOf converts a standard library weekday.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ClockTime is a time of day with minute resolution, stored as minutes since
// midnight. Ordering matches the ordering of the zero-padded "HH:MM" form.
type ClockTime int

// Clock builds a ClockTime from an hour and minute.
func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses a 24-hour "HH:MM" value.
func ParseClockTime(value string) (ClockTime, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) != 5 || trimmed[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	hour, okH := twoDigits(trimmed[0:2])
	minute, okM := twoDigits(trimmed[3:5])
	if !okH || !okM || hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	return Clock(hour, minute), nil
}

// ClockTimeOf truncates t to the minute.
func ClockTimeOf(t time.Time) ClockTime {
	return Clock(t.Hour(), t.Minute())
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Valid reports whether c lies within a single day.
func (c ClockTime) Valid() bool {
	return c >= 0 && c < 24*60
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Date is a calendar date without a time or zone. The zero value is not a
// valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalises the supplied components the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "YYYY-MM-DD" value.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return DateOf(parsed), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday derives the day of the week from the calendar.
func (d Date) Weekday() Weekday {
	return WeekdayOf(d.Time().Weekday())
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// AddMonths returns the date n months after d, normalised like time.AddDate.
func (d Date) AddMonths(n int) Date {
	return DateOf(d.Time().AddDate(0, n, 0))
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

// Within reports whether d lies in the inclusive range [from, to].
func (d Date) Within(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
