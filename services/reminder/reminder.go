// Package reminder schedules the pre-session notifications tied to a
// confirmed booking: one an hour before the session and one fifteen minutes
// before. Jobs are keyed by (booking id, offset) so re-arming replaces
// instead of duplicating, and disarming removes exactly the jobs that have
// not fired yet.
package reminder

import (
	"context"
	"fmt"
	"time"

	"concierge/models"
)

// Scheduler arms and disarms reminder jobs for a booking.
type Scheduler interface {
	// Arm schedules the future-dated reminders for a confirmed booking.
	// Fire times already in the past are skipped silently. Arming a booking
	// that is already armed replaces its jobs.
	Arm(ctx context.Context, booking *models.Booking, now time.Time) error
	// Disarm removes any still-scheduled jobs for the booking. Disarming a
	// booking with no scheduled jobs is a no-op.
	Disarm(ctx context.Context, bookingID string) error
}

// FireTime is one computed trigger instant.
type FireTime struct {
	Offset string
	Lead   time.Duration
	At     time.Time
}

// FireTimes computes the trigger instants for a session, keeping only those
// still in the future. A malformed slot yields an error rather than a
// best-effort schedule.
func FireTimes(slotDate, slotStart string, leadLong, leadShort time.Duration, now time.Time) ([]FireTime, error) {
	startsAt, err := time.ParseInLocation(
		models.DateLayout+" "+models.TimeLayout,
		slotDate+" "+slotStart,
		now.Location(),
	)
	if err != nil {
		return nil, fmt.Errorf("reminder: unparsable session start %q %q: %w", slotDate, slotStart, err)
	}

	all := []FireTime{
		{Offset: models.ReminderOffsetHour, Lead: leadLong, At: startsAt.Add(-leadLong)},
		{Offset: models.ReminderOffsetQuarter, Lead: leadShort, At: startsAt.Add(-leadShort)},
	}
	var future []FireTime
	for _, ft := range all {
		if ft.At.After(now) {
			future = append(future, ft)
		}
	}
	return future, nil
}

// TaskID derives the stable queue key for one reminder job.
func TaskID(bookingID, offset string) string {
	return fmt.Sprintf("reminder:%s:%s", bookingID, offset)
}

// Recipients builds the delivery list for one fire time. Master bookings
// remind both sides; device bookings remind only the client.
func Recipients(booking *models.Booking, lead time.Duration) []models.ReminderRecipient {
	minutes := int(lead.Minutes())

	clientBody := fmt.Sprintf("Your session with %s starts in %d minutes at %s.",
		booking.EntityName, minutes, booking.Location)
	if booking.IsDevice {
		clientBody = fmt.Sprintf("Your %s session starts in %d minutes at %s.",
			booking.EntityName, minutes, booking.Location)
	}

	recipients := []models.ReminderRecipient{
		{
			ID:    booking.ClientID,
			Role:  "client",
			Title: "Session reminder",
			Body:  clientBody,
		},
	}
	if !booking.IsDevice {
		recipients = append(recipients, models.ReminderRecipient{
			ID:   booking.EntityID,
			Role: "master",
			Title: "Session reminder",
			Body: fmt.Sprintf("%s arrives in %d minutes. Session at %s, %s–%s.",
				booking.ClientName, minutes, booking.Location,
				booking.SlotStartTime, booking.SlotEndTime),
		})
	}
	return recipients
}
