// Package availability computes which published slots can still be booked.
// It is a pure function of its inputs: the entity's slot list, the bookings
// held against it, and a reference clock.
package availability

import (
	"time"

	"concierge/models"
)

// Available returns the slots that are strictly in the future relative to
// now and not held by an active (pending or confirmed) booking.
//
// A slot whose date or start time fails to parse is treated as unavailable.
// Malformed data must never become bookable.
func Available(slots []models.Slot, bookings []models.Booking, now time.Time) []models.Slot {
	held := make(map[string]struct{})
	for i := range bookings {
		b := &bookings[i]
		if b.Active() {
			held[b.SlotDate+"|"+b.SlotStartTime] = struct{}{}
		}
	}

	var out []models.Slot
	for _, slot := range slots {
		startsAt, err := slot.StartsAt(now.Location())
		if err != nil {
			continue
		}
		if !startsAt.After(now) {
			continue
		}
		if _, booked := held[slot.Date+"|"+slot.StartTime]; booked {
			continue
		}
		out = append(out, slot)
	}
	return out
}

// Count reports how many slots Available would return. Defined in terms of
// Available so the two can never drift.
func Count(slots []models.Slot, bookings []models.Booking, now time.Time) int {
	return len(Available(slots, bookings, now))
}
