package documentRepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"concierge/database/docstore"
	"concierge/database/repository"
	"concierge/models"
)

// breakPersistence replaces the data file with a directory so the atomic
// rename inside Save fails.
func breakPersistence(t *testing.T, path string) {
	t.Helper()
	os.Remove(path)
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("break persistence: %v", err)
	}
}

func restorePersistence(t *testing.T, path string) {
	t.Helper()
	if err := os.Remove(path); err != nil {
		t.Fatalf("restore persistence: %v", err)
	}
}

func TestFailedSaveLeavesNoTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	breakPersistence(t, path)

	b := &models.Booking{
		ID:            "b-1",
		ClientID:      "c-1",
		EntityID:      "m-1",
		SlotDate:      "2025-08-02",
		SlotStartTime: "14:00",
		SlotEndTime:   "15:00",
		Status:        models.StatusPending,
	}
	if err := store.Bookings().Create(ctx, b); err == nil {
		t.Fatal("expected create to fail when the save fails")
	}
	if _, err := store.Bookings().GetByID(ctx, "b-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("booking visible after failed save: %v", err)
	}

	m := &models.Master{TelegramID: "m-1", Name: "Anna", IsActive: true}
	if err := store.Masters().Create(ctx, m); err == nil {
		t.Fatal("expected master create to fail when the save fails")
	}
	if _, err := store.Masters().GetByTelegramID(ctx, "m-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("master visible after failed save: %v", err)
	}

	// The slot is not blocked once persistence recovers.
	restorePersistence(t, path)
	if err := store.Bookings().Create(ctx, b); err != nil {
		t.Fatalf("create after recovery: %v", err)
	}
}

func TestFailedSaveKeepsPriorState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()

	b := &models.Booking{
		ID:            "b-1",
		ClientID:      "c-1",
		EntityID:      "m-1",
		SlotDate:      "2025-08-02",
		SlotStartTime: "14:00",
		SlotEndTime:   "15:00",
		Status:        models.StatusPending,
	}
	if err := store.Bookings().Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	breakPersistence(t, path)
	if _, err := store.Bookings().Transition(ctx, "b-1", models.StatusPending, models.StatusConfirmed, ""); err == nil {
		t.Fatal("expected transition to fail when the save fails")
	}
	got, err := store.Bookings().GetByID(ctx, "b-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusPending {
		t.Fatalf("status changed despite failed save: %s", got.Status)
	}
}

func TestMaxBookingsFromDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	doc := docstore.Empty()
	doc.Settings.MaxBookingsPerMaster = 3
	if err := docstore.New(path).Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := store.MaxBookings(); got != 3 {
		t.Fatalf("expected persisted cap 3, got %d", got)
	}
}
