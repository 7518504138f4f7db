package model

import (
	"errors"
	"fmt"
	"time"
)

// Slot is a half-hour seating start time in "HH:MM" form.  Because slots are
// zero padded they order correctly as plain strings.
type Slot string

// ServiceSlots is the full service window, 17:00 to 23:00 inclusive.
var ServiceSlots = []Slot{
	"17:00", "17:30", "18:00", "18:30", "19:00", "19:30", "20:00",
	"20:30", "21:00", "21:30", "22:00", "22:30", "23:00",
}

// sundayLastSlot is the latest seating accepted on Sundays.
const sundayLastSlot Slot = "21:00"

// ErrUnknownSlot is returned by ParseSlot for anything outside ServiceSlots.
var ErrUnknownSlot = errors.New("unknown time slot")

// ParseSlot validates s against the fixed slot enumeration.  The match is
// exact: "19:00:00" or "7:00 pm" are rejected.
func ParseSlot(s string) (Slot, error) {
	for _, sl := range ServiceSlots {
		if string(sl) == s {
			return sl, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// AllowedOn reports whether the slot can be booked on the given weekday.
func (s Slot) AllowedOn(day time.Weekday) bool {
	if day == time.Sunday {
		return s <= sundayLastSlot
	}
	return true
}

// SlotsOn returns the slots bookable on day, in service order.
func SlotsOn(day time.Weekday) []Slot {
	out := make([]Slot, 0, len(ServiceSlots))
	for _, s := range ServiceSlots {
		if s.AllowedOn(day) {
			out = append(out, s)
		}
	}
	return out
}

// Index returns the position of s in ServiceSlots, or -1.
func (s Slot) Index() int {
	for i, sl := range ServiceSlots {
		if sl == s {
			return i
		}
	}
	return -1
}

func (s Slot) String() string { return string(s) }
