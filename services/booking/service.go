// File: services/booking/service.go
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/database/repository"
	"concierge/models"
	"concierge/services/availability"
	"concierge/services/notification"
	"concierge/services/reminder"
	"concierge/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService on top of the repository
// layer. Writes always hit storage before any notification goes out, and a
// failed reminder arm or notification send is logged but never unwinds an
// already-persisted state change.
type DefaultBookingService struct {
	Masters     repository.MasterRepository
	Devices     repository.DeviceRepository
	Bookings    repository.BookingRepository
	Reminders   reminder.Scheduler
	Notifier    notification.Notifier
	MaxBookings int
	// Now is the service clock, overridable in tests.
	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// bookableEntity is the common shape of masters and devices for admission.
type bookableEntity struct {
	ID       string
	Name     string
	IsDevice bool
	OwnerID  string
	Slots    []models.Slot
}

func (s *DefaultBookingService) resolveEntity(ctx context.Context, entityID string) (*bookableEntity, error) {
	master, err := s.Masters.GetByTelegramID(ctx, entityID)
	if err == nil {
		// A profile nobody has claimed yet cannot take bookings.
		if !master.IsActive || !master.Linked() {
			return nil, ErrNotFound
		}
		return &bookableEntity{ID: master.TelegramID, Name: master.Name, Slots: master.TimeSlots}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	device, err := s.Devices.GetByID(ctx, entityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !device.IsActive {
		return nil, ErrNotFound
	}
	return &bookableEntity{ID: device.ID, Name: device.Name, IsDevice: true, OwnerID: device.OwnerID, Slots: device.TimeSlots}, nil
}

// RequestBooking admits a new booking. The slot must be published, in the
// future, and unheld; the client must be under the per-entity cap. The store's
// uniqueness gate is the final arbiter, so two racing requests for the same
// slot can never both win.
func (s *DefaultBookingService) RequestBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	logger := utils.GetLogger()

	entity, err := s.resolveEntity(ctx, req.EntityID)
	if err != nil {
		return nil, err
	}

	var slot *models.Slot
	for i := range entity.Slots {
		if entity.Slots[i].Matches(req.Slot) {
			slot = &entity.Slots[i]
			break
		}
	}
	if slot == nil {
		return nil, ErrSlotUnavailable
	}

	existing, err := s.Bookings.ListByEntity(ctx, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	now := s.now()
	open := availability.Available([]models.Slot{*slot}, existing, now)
	if len(open) == 0 {
		return nil, ErrSlotUnavailable
	}

	active, err := s.Bookings.CountActiveByClientAndEntity(ctx, req.ClientID, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if active >= s.MaxBookings {
		return nil, &LimitError{EntityName: entity.Name, Max: s.MaxBookings}
	}

	status := models.StatusPending
	if entity.IsDevice {
		status = models.StatusConfirmed
	}
	b := &models.Booking{
		ID:            uuid.NewString(),
		ClientID:      req.ClientID,
		ClientName:    req.ClientName,
		EntityID:      entity.ID,
		EntityName:    entity.Name,
		IsDevice:      entity.IsDevice,
		SlotDate:      slot.Date,
		SlotStartTime: slot.StartTime,
		SlotEndTime:   slot.EndTime,
		Location:      slot.Location,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicateActiveBooking) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if entity.IsDevice {
		s.arm(ctx, b)
		s.notify(ctx, b.ClientID, "Booking confirmed",
			fmt.Sprintf("Your %s session on %s at %s is confirmed. Location: %s.",
				b.EntityName, b.SlotDate, b.SlotStartTime, b.Location), b)
		if entity.OwnerID != "" {
			s.notify(ctx, entity.OwnerID, "New device booking",
				fmt.Sprintf("%s booked %s for %s %s–%s at %s.",
					displayName(b), b.EntityName, b.SlotDate, b.SlotStartTime, b.SlotEndTime, b.Location), b)
		}
	} else {
		s.notify(ctx, b.EntityID, "New booking request",
			fmt.Sprintf("%s asked for %s %s–%s at %s. Confirm or decline.",
				displayName(b), b.SlotDate, b.SlotStartTime, b.SlotEndTime, b.Location), b)
	}

	logger.Info("Booking requested",
		zap.String("booking_id", b.ID),
		zap.String("entity_id", b.EntityID),
		zap.String("status", b.Status))
	return b, nil
}

// ConfirmBooking moves a pending booking to confirmed and arms its reminders.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, masterID, bookingID string) (*models.Booking, error) {
	b, err := s.ownedMasterBooking(ctx, masterID, bookingID)
	if err != nil {
		return nil, err
	}

	updated, err := s.Bookings.Transition(ctx, b.ID, models.StatusPending, models.StatusConfirmed, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.arm(ctx, updated)
	s.notify(ctx, updated.ClientID, "Booking confirmed",
		fmt.Sprintf("%s confirmed your session on %s at %s. Location: %s.",
			updated.EntityName, updated.SlotDate, updated.SlotStartTime, updated.Location), updated)
	return updated, nil
}

// DeclineBooking moves a pending booking to declined. The reason is mandatory
// and is delivered to the client verbatim.
func (s *DefaultBookingService) DeclineBooking(ctx context.Context, masterID, bookingID, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	b, err := s.ownedMasterBooking(ctx, masterID, bookingID)
	if err != nil {
		return nil, err
	}

	updated, err := s.Bookings.Transition(ctx, b.ID, models.StatusPending, models.StatusDeclined, reason)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.notify(ctx, updated.ClientID, "Booking declined",
		fmt.Sprintf("%s declined your request for %s at %s. Reason: %s",
			updated.EntityName, updated.SlotDate, updated.SlotStartTime, reason), updated)
	return updated, nil
}

// CancelSlot withdraws one of the master's published slots. If an active
// booking holds the slot it is cancelled first: status flipped, reminders
// disarmed, client notified with the reason. The slot is removed from the
// profile only after the cascade has been persisted.
func (s *DefaultBookingService) CancelSlot(ctx context.Context, masterID string, ref models.SlotRef, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	master, err := s.Masters.GetByTelegramID(ctx, masterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	found := false
	for i := range master.TimeSlots {
		if master.TimeSlots[i].Matches(ref) {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	held, err := s.Bookings.FindActiveBySlot(ctx, masterID, ref)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if held != nil {
		cancelled, err := s.Bookings.Transition(ctx, held.ID, held.Status, models.StatusCancelled, reason)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if cancelled != nil {
			s.disarm(ctx, cancelled.ID)
			s.notify(ctx, cancelled.ClientID, "Session cancelled",
				fmt.Sprintf("%s cancelled your session on %s at %s. Reason: %s",
					cancelled.EntityName, cancelled.SlotDate, cancelled.SlotStartTime, reason), cancelled)
		}
	}

	if err := s.Masters.RemoveSlot(ctx, masterID, ref); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// CancelDeviceBooking is the device owner's only revocation path: devices have
// no decline, so a confirmed booking can only be cancelled, with a reason.
func (s *DefaultBookingService) CancelDeviceBooking(ctx context.Context, ownerID, bookingID, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !b.IsDevice {
		return nil, ErrNotFound
	}
	device, err := s.Devices.GetByID(ctx, b.EntityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if device.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	updated, err := s.Bookings.Transition(ctx, b.ID, models.StatusConfirmed, models.StatusCancelled, reason)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.disarm(ctx, updated.ID)
	s.notify(ctx, updated.ClientID, "Session cancelled",
		fmt.Sprintf("Your %s session on %s at %s was cancelled. Reason: %s",
			updated.EntityName, updated.SlotDate, updated.SlotStartTime, reason), updated)
	return updated, nil
}

// ListAvailable returns the entity's slots that are still bookable now.
func (s *DefaultBookingService) ListAvailable(ctx context.Context, entityID string) ([]models.Slot, error) {
	entity, err := s.resolveEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListByEntity(ctx, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return availability.Available(entity.Slots, bookings, s.now()), nil
}

// ListClientBookings returns the client's bookings, newest first.
func (s *DefaultBookingService) ListClientBookings(ctx context.Context, clientID string) ([]models.Booking, error) {
	bookings, err := s.Bookings.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return bookings, nil
}

// ownedMasterBooking loads a booking and verifies the caller is the master it
// belongs to.
func (s *DefaultBookingService) ownedMasterBooking(ctx context.Context, masterID, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if b.IsDevice {
		return nil, ErrNotFound
	}
	if b.EntityID != masterID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *DefaultBookingService) arm(ctx context.Context, b *models.Booking) {
	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.Arm(ctx, b, s.now()); err != nil {
		utils.GetLogger().Error("Failed to arm reminders",
			zap.String("booking_id", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) disarm(ctx context.Context, bookingID string) {
	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.Disarm(ctx, bookingID); err != nil {
		utils.GetLogger().Error("Failed to disarm reminders",
			zap.String("booking_id", bookingID), zap.Error(err))
	}
}

func (s *DefaultBookingService) notify(ctx context.Context, principalID, title, body string, b *models.Booking) {
	if s.Notifier == nil {
		return
	}
	data := map[string]string{
		"booking_id": b.ID,
		"status":     b.Status,
	}
	if err := s.Notifier.Send(ctx, principalID, title, body, data); err != nil {
		utils.GetLogger().Error("Failed to send notification",
			zap.String("principal_id", principalID),
			zap.String("booking_id", b.ID), zap.Error(err))
	}
}

func displayName(b *models.Booking) string {
	if b.ClientName != "" {
		return b.ClientName
	}
	return "A guest"
}
