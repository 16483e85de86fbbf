package models

import "time"

// Reminder offsets, used as the job key suffix per booking.
const (
	ReminderOffsetHour    = "1_hour"
	ReminderOffsetQuarter = "15_min"
)

// ReminderRecipient is one delivery target of a reminder job.
type ReminderRecipient struct {
	ID    string `json:"id"`
	Role  string `json:"role"` // "master" or "client"
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ReminderPayload is the task payload for a scheduled reminder. It is
// ephemeral: it lives only inside the task queue, never in the store.
type ReminderPayload struct {
	BookingID  string              `json:"booking_id"`
	Offset     string              `json:"offset"`
	FireAt     time.Time           `json:"fire_at"`
	Recipients []ReminderRecipient `json:"recipients"`
}
