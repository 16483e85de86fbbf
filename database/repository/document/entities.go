package documentRepo

import (
	"context"
	"time"

	"concierge/database/repository"
	"concierge/models"
)

// Mutators follow one pattern: find on the live document, mutate a clone,
// commit. A failed save leaves the live document exactly as it was.
type masterView struct{ s *Store }

func (v *masterView) Create(ctx context.Context, master *models.Master) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for i := range v.s.doc.Masters {
		if v.s.doc.Masters[i].TelegramID == master.TelegramID {
			return repository.ErrDuplicateEntity
		}
	}
	now := time.Now()
	master.CreatedAt = now
	master.UpdatedAt = now
	if master.TimeSlots == nil {
		master.TimeSlots = []models.Slot{}
	}
	doc := v.s.doc.Clone()
	doc.Masters = append(doc.Masters, *master)
	return v.s.commitLocked(doc)
}

func (v *masterView) GetByTelegramID(ctx context.Context, telegramID string) (*models.Master, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for i := range v.s.doc.Masters {
		if v.s.doc.Masters[i].TelegramID == telegramID {
			m := v.s.doc.Masters[i]
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *masterView) GetAllActive(ctx context.Context) ([]models.Master, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []models.Master
	for i := range v.s.doc.Masters {
		if v.s.doc.Masters[i].IsActive {
			out = append(out, v.s.doc.Masters[i])
		}
	}
	return out, nil
}

func (v *masterView) Update(ctx context.Context, master *models.Master) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	idx := v.indexOf(master.TelegramID)
	if idx < 0 {
		return repository.ErrNotFound
	}
	master.UpdatedAt = time.Now()
	doc := v.s.doc.Clone()
	doc.Masters[idx] = *master
	return v.s.commitLocked(doc)
}

func (v *masterView) Deactivate(ctx context.Context, telegramID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	idx := v.indexOf(telegramID)
	if idx < 0 {
		return repository.ErrNotFound
	}
	doc := v.s.doc.Clone()
	doc.Masters[idx].IsActive = false
	doc.Masters[idx].UpdatedAt = time.Now()
	return v.s.commitLocked(doc)
}

func (v *masterView) AddSlots(ctx context.Context, telegramID string, slots []models.Slot) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	idx := v.indexOf(telegramID)
	if idx < 0 {
		return repository.ErrNotFound
	}
	doc := v.s.doc.Clone()
	doc.Masters[idx].TimeSlots = append(doc.Masters[idx].TimeSlots, slots...)
	doc.Masters[idx].UpdatedAt = time.Now()
	return v.s.commitLocked(doc)
}

func (v *masterView) RemoveSlot(ctx context.Context, telegramID string, ref models.SlotRef) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	idx := v.indexOf(telegramID)
	if idx < 0 {
		return repository.ErrNotFound
	}
	doc := v.s.doc.Clone()
	var kept []models.Slot
	for _, slot := range doc.Masters[idx].TimeSlots {
		if !slot.Matches(ref) {
			kept = append(kept, slot)
		}
	}
	doc.Masters[idx].TimeSlots = kept
	doc.Masters[idx].UpdatedAt = time.Now()
	return v.s.commitLocked(doc)
}

// indexOf finds a master on the live document. Callers hold the store mutex.
func (v *masterView) indexOf(telegramID string) int {
	for i := range v.s.doc.Masters {
		if v.s.doc.Masters[i].TelegramID == telegramID {
			return i
		}
	}
	return -1
}

type deviceView struct{ s *Store }

func (v *deviceView) Create(ctx context.Context, device *models.Device) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for i := range v.s.doc.Devices {
		if v.s.doc.Devices[i].ID == device.ID {
			return repository.ErrDuplicateEntity
		}
	}
	device.CreatedAt = time.Now()
	if device.TimeSlots == nil {
		device.TimeSlots = []models.Slot{}
	}
	doc := v.s.doc.Clone()
	doc.Devices = append(doc.Devices, *device)
	return v.s.commitLocked(doc)
}

func (v *deviceView) GetByID(ctx context.Context, id string) (*models.Device, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for i := range v.s.doc.Devices {
		if v.s.doc.Devices[i].ID == id {
			d := v.s.doc.Devices[i]
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *deviceView) GetAllActive(ctx context.Context) ([]models.Device, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []models.Device
	for i := range v.s.doc.Devices {
		if v.s.doc.Devices[i].IsActive {
			out = append(out, v.s.doc.Devices[i])
		}
	}
	return out, nil
}

func (v *deviceView) Update(ctx context.Context, device *models.Device) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for i := range v.s.doc.Devices {
		if v.s.doc.Devices[i].ID == device.ID {
			doc := v.s.doc.Clone()
			doc.Devices[i] = *device
			return v.s.commitLocked(doc)
		}
	}
	return repository.ErrNotFound
}

type locationView struct{ s *Store }

func (v *locationView) GetAll(ctx context.Context) ([]models.Location, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	out := make([]models.Location, len(v.s.doc.Locations))
	copy(out, v.s.doc.Locations)
	return out, nil
}
