package documentRepo

import (
	"context"
	"sort"
	"time"

	"concierge/database/repository"
	"concierge/models"
)

type bookingView struct{ s *Store }

// Create inserts a booking unless an active one already holds the slot
// tuple. The store mutex is held across the scan and the append, so two
// racing creates serialize and exactly one wins. The insert lands on a clone
// that becomes live only after a successful save: a failed write never
// blocks the slot.
func (v *bookingView) Create(ctx context.Context, booking *models.Booking) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for i := range v.s.doc.Bookings {
		b := &v.s.doc.Bookings[i]
		if b.Active() &&
			b.EntityID == booking.EntityID &&
			b.SlotDate == booking.SlotDate &&
			b.SlotStartTime == booking.SlotStartTime {
			return repository.ErrDuplicateActiveBooking
		}
	}

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	doc := v.s.doc.Clone()
	doc.Bookings = append(doc.Bookings, *booking)
	return v.s.commitLocked(doc)
}

func (v *bookingView) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for i := range v.s.doc.Bookings {
		if v.s.doc.Bookings[i].ID == id {
			b := v.s.doc.Bookings[i]
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *bookingView) ListByEntity(ctx context.Context, entityID string) ([]models.Booking, error) {
	return v.listWhere(func(b *models.Booking) bool { return b.EntityID == entityID })
}

func (v *bookingView) ListByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	return v.listWhere(func(b *models.Booking) bool { return b.ClientID == clientID })
}

func (v *bookingView) listWhere(match func(*models.Booking) bool) ([]models.Booking, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []models.Booking
	for i := range v.s.doc.Bookings {
		if match(&v.s.doc.Bookings[i]) {
			out = append(out, v.s.doc.Bookings[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v *bookingView) CountActiveByClientAndEntity(ctx context.Context, clientID, entityID string) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	count := 0
	for i := range v.s.doc.Bookings {
		b := &v.s.doc.Bookings[i]
		if b.Active() && b.ClientID == clientID && b.EntityID == entityID {
			count++
		}
	}
	return count, nil
}

func (v *bookingView) FindActiveBySlot(ctx context.Context, entityID string, ref models.SlotRef) (*models.Booking, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for i := range v.s.doc.Bookings {
		b := &v.s.doc.Bookings[i]
		if b.Active() && b.EntityID == entityID && b.SlotDate == ref.Date && b.SlotStartTime == ref.StartTime {
			found := *b
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *bookingView) Transition(ctx context.Context, id, from, to, reason string) (*models.Booking, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	idx := -1
	for i := range v.s.doc.Bookings {
		if v.s.doc.Bookings[i].ID == id && v.s.doc.Bookings[i].Status == from {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, repository.ErrNotFound
	}

	doc := v.s.doc.Clone()
	b := &doc.Bookings[idx]
	b.Status = to
	b.UpdatedAt = time.Now()
	if reason != "" {
		switch to {
		case models.StatusDeclined:
			b.DeclineReason = reason
		case models.StatusCancelled:
			b.CancelReason = reason
		}
	}
	if err := v.s.commitLocked(doc); err != nil {
		return nil, err
	}
	updated := *b
	return &updated, nil
}
