// File: services/booking/interface.go
package booking

import (
	"context"

	"concierge/models"
)

// BookingRequest is the input for a new booking attempt.
type BookingRequest struct {
	ClientID   string         `json:"client_id" binding:"required"`
	ClientName string         `json:"client_name"`
	EntityID   string         `json:"entity_id" binding:"required"`
	Slot       models.SlotRef `json:"slot" binding:"required"`
}

// BookingService is the slot lifecycle engine: it admits booking requests,
// runs the pending → confirmed/declined/cancelled transitions, and keeps the
// reminder schedule and notifications in step with every accepted change.
type BookingService interface {
	// RequestBooking claims a published slot for a client. Master slots enter
	// pending; device slots are confirmed immediately.
	RequestBooking(ctx context.Context, req BookingRequest) (*models.Booking, error)
	// ConfirmBooking is the master accepting a pending booking they own.
	ConfirmBooking(ctx context.Context, masterID, bookingID string) (*models.Booking, error)
	// DeclineBooking is the master rejecting a pending booking, with a reason
	// the client will see.
	DeclineBooking(ctx context.Context, masterID, bookingID, reason string) (*models.Booking, error)
	// CancelSlot withdraws a published slot. Any active booking on it is
	// cancelled, its reminders disarmed, and the client told why.
	CancelSlot(ctx context.Context, masterID string, ref models.SlotRef, reason string) error
	// CancelDeviceBooking lets the device owner revoke a confirmed device
	// booking, with a mandatory reason.
	CancelDeviceBooking(ctx context.Context, ownerID, bookingID, reason string) (*models.Booking, error)
	// ListAvailable returns the entity's bookable slots as of now.
	ListAvailable(ctx context.Context, entityID string) ([]models.Slot, error)
	// ListClientBookings returns every booking the client has made, newest first.
	ListClientBookings(ctx context.Context, clientID string) ([]models.Booking, error)
}
