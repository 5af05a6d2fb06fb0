package booking

import (
	"errors"
	"fmt"
	"time"
)

// TimeOfDay is a clock time with minute precision, stored as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// BusinessHours describes the bookable window of a single day.
type BusinessHours struct {
	Open        TimeOfDay
	Close       TimeOfDay
	SlotMinutes int
}

var ErrInvalidConfig = errors.New("invalid business hours configuration")

// GenerateSlots returns the candidate slot start times for the given hours,
// starting at Open, SlotMinutes apart, while the slot still fully fits before
// Close. A slot starting exactly at Close is excluded.
func GenerateSlots(hours BusinessHours) ([]TimeOfDay, error) {
	if hours.SlotMinutes <= 0 || hours.Open >= hours.Close {
		return nil, ErrInvalidConfig
	}
	var slots []TimeOfDay
	step := TimeOfDay(hours.SlotMinutes)
	for start := hours.Open; start+step <= hours.Close; start += step {
		slots = append(slots, start)
	}
	return slots, nil
}

// ContainsSlot reports whether start is a valid slot of the given duration:
// aligned to the slot grid and fully inside the bookable window.
func (h BusinessHours) ContainsSlot(start TimeOfDay, durationMinutes int) bool {
	if durationMinutes != h.SlotMinutes {
		return false
	}
	if start < h.Open || start+TimeOfDay(durationMinutes) > h.Close {
		return false
	}
	return (start-h.Open)%TimeOfDay(h.SlotMinutes) == 0
}

// WeekSchedule maps weekdays to opening hours. Days without an entry are closed.
type WeekSchedule map[time.Weekday]BusinessHours

// HoursFor returns the business hours for the given date. The second return
// value is false when the clinic is closed that day; callers should treat it
// as an empty slot list, not an error.
func (ws WeekSchedule) HoursFor(date time.Time) (BusinessHours, bool) {
	hours, ok := ws[date.Weekday()]
	return hours, ok
}
