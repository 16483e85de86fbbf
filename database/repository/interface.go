package repository

import (
	"context"
	"errors"

	"concierge/models"
)

// Sentinel errors shared by every backend. Services translate these into
// their own user-facing taxonomy.
var (
	// ErrNotFound signals that the referenced entity or booking does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateActiveBooking signals that an active (pending or confirmed)
	// booking already holds the same (entity, date, start_time) tuple. This is
	// the store-level admission gate against double-booking.
	ErrDuplicateActiveBooking = errors.New("repository: active booking already exists for slot")
	// ErrDuplicateEntity signals a create with an already-used principal id.
	ErrDuplicateEntity = errors.New("repository: entity already exists")
)

// MasterRepository manages master profiles and their published slots.
type MasterRepository interface {
	Create(ctx context.Context, master *models.Master) error
	GetByTelegramID(ctx context.Context, telegramID string) (*models.Master, error)
	GetAllActive(ctx context.Context) ([]models.Master, error)
	Update(ctx context.Context, master *models.Master) error
	Deactivate(ctx context.Context, telegramID string) error
	AddSlots(ctx context.Context, telegramID string, slots []models.Slot) error
	RemoveSlot(ctx context.Context, telegramID string, ref models.SlotRef) error
}

// DeviceRepository manages bookable equipment.
type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	GetByID(ctx context.Context, id string) (*models.Device, error)
	GetAllActive(ctx context.Context) ([]models.Device, error)
	Update(ctx context.Context, device *models.Device) error
}

// BookingRepository manages the canonical booking collection. Create must
// reject a booking whose active slot tuple is already held, atomically with
// respect to concurrent creates, and Transition must be conditional on the
// expected source status.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByEntity(ctx context.Context, entityID string) ([]models.Booking, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Booking, error)
	CountActiveByClientAndEntity(ctx context.Context, clientID, entityID string) (int, error)
	FindActiveBySlot(ctx context.Context, entityID string, ref models.SlotRef) (*models.Booking, error)
	// Transition moves a booking from status `from` to status `to`, storing
	// reason into the decline or cancel field depending on `to`. Returns
	// ErrNotFound when no booking with the given id currently has status `from`.
	Transition(ctx context.Context, id, from, to, reason string) (*models.Booking, error)
}

// LocationRepository exposes the retreat's named locations.
type LocationRepository interface {
	GetAll(ctx context.Context) ([]models.Location, error)
}
