package models

import "time"

// Booking status values. Declined and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
	StatusCancelled = "cancelled"
)

// Booking is a client's claim on a slot. Bookings live in one canonical
// collection keyed by id; per-master and per-device views are derived by
// query, never duplicated.
type Booking struct {
	ID            string    `bson:"id" json:"id"`
	ClientID      string    `bson:"client_id" json:"client_id"`
	ClientName    string    `bson:"client_name" json:"client_name"`
	EntityID      string    `bson:"entity_id" json:"entity_id"` // master telegram_id or device id
	EntityName    string    `bson:"entity_name" json:"entity_name"`
	IsDevice      bool      `bson:"is_device" json:"is_device"`
	SlotDate      string    `bson:"slot_date" json:"slot_date"`
	SlotStartTime string    `bson:"slot_start_time" json:"slot_start_time"`
	SlotEndTime   string    `bson:"slot_end_time" json:"slot_end_time"`
	Location      string    `bson:"location" json:"location"`
	Status        string    `bson:"status" json:"status"`
	DeclineReason string    `bson:"decline_reason,omitempty" json:"decline_reason,omitempty"`
	CancelReason  string    `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the booking still holds its slot.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// SlotRef returns the slot tuple this booking holds.
func (b *Booking) SlotRef() SlotRef {
	return SlotRef{Date: b.SlotDate, StartTime: b.SlotStartTime}
}

// Slot reconstructs the slot view of the booking.
func (b *Booking) Slot() Slot {
	return Slot{
		Date:      b.SlotDate,
		StartTime: b.SlotStartTime,
		EndTime:   b.SlotEndTime,
		Location:  b.Location,
	}
}

// ValidStatus reports whether s is one of the four booking statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}
