// Package docstore implements the file-backed persistence document: one JSON
// file holding masters, devices, bookings and locations, loaded and saved as
// a whole with an integrity check on every load.
package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"concierge/models"
)

// Document is the full persisted state.
type Document struct {
	Masters   []models.Master   `json:"masters"`
	Devices   []models.Device   `json:"devices"`
	Bookings  []models.Booking  `json:"bookings"`
	Locations []models.Location `json:"locations"`
	Settings  Settings          `json:"settings"`
}

// Settings carries tunables persisted alongside the data.
type Settings struct {
	MaxBookingsPerMaster int `json:"max_bookings_per_master"`
}

// Clone returns a deep copy of the document. Mutations go to a clone and are
// promoted only after a successful save, so the live document never holds
// state that failed to reach disk.
func (d *Document) Clone() *Document {
	out := &Document{
		Masters:   append([]models.Master(nil), d.Masters...),
		Devices:   append([]models.Device(nil), d.Devices...),
		Bookings:  append([]models.Booking(nil), d.Bookings...),
		Locations: append([]models.Location(nil), d.Locations...),
		Settings:  d.Settings,
	}
	for i := range out.Masters {
		out.Masters[i].Services = copyStrings(out.Masters[i].Services)
		out.Masters[i].TimeSlots = copySlots(out.Masters[i].TimeSlots)
	}
	for i := range out.Devices {
		out.Devices[i].TimeSlots = copySlots(out.Devices[i].TimeSlots)
	}
	return out
}

func copySlots(in []models.Slot) []models.Slot {
	if in == nil {
		return nil
	}
	out := make([]models.Slot, len(in))
	copy(out, in)
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Store loads and saves the document file.
type Store struct {
	path string
}

// New returns a store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Empty returns a fresh document with seeded locations and defaults.
func Empty() *Document {
	return &Document{
		Masters:   []models.Master{},
		Devices:   []models.Device{},
		Bookings:  []models.Booking{},
		Locations: models.DefaultLocations(),
		Settings:  Settings{MaxBookingsPerMaster: 2},
	}
}

// Load reads and validates the document. A missing file yields a fresh empty
// document; a corrupt or invariant-violating file is an error so a caller can
// decide to restore rather than silently start from scratch.
func (s *Store) Load() (*Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("docstore: read %s: %w", s.path, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("docstore: parse %s: %w", s.path, err)
	}
	if err := CheckIntegrity(&doc); err != nil {
		return nil, fmt.Errorf("docstore: integrity check failed for %s: %w", s.path, err)
	}
	return &doc, nil
}

// Save writes the whole document atomically: marshal to a temp file in the
// same directory, fsync, then rename over the target.
func (s *Store) Save(doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("docstore: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".database-*.json")
	if err != nil {
		return fmt.Errorf("docstore: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("docstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("docstore: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("docstore: close temp: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("docstore: rename into place: %w", err)
	}
	return nil
}

// CheckIntegrity validates the document's structural invariants: known
// booking statuses, well-formed slots, and at most one active booking per
// (entity, date, start_time) tuple.
func CheckIntegrity(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}

	seen := make(map[string]string) // active tuple -> booking id
	for i := range doc.Bookings {
		b := &doc.Bookings[i]
		if b.ID == "" {
			return fmt.Errorf("booking %d has no id", i)
		}
		if !models.ValidStatus(b.Status) {
			return fmt.Errorf("booking %s has unknown status %q", b.ID, b.Status)
		}
		if !b.Active() {
			continue
		}
		key := b.EntityID + "|" + b.SlotDate + "|" + b.SlotStartTime
		if other, dup := seen[key]; dup {
			return fmt.Errorf("bookings %s and %s both hold slot %s %s of %s",
				other, b.ID, b.SlotDate, b.SlotStartTime, b.EntityID)
		}
		seen[key] = b.ID
	}

	for i := range doc.Masters {
		for _, slot := range doc.Masters[i].TimeSlots {
			if err := slot.Validate(); err != nil {
				return fmt.Errorf("master %s: %w", doc.Masters[i].TelegramID, err)
			}
		}
	}
	for i := range doc.Devices {
		for _, slot := range doc.Devices[i].TimeSlots {
			if err := slot.Validate(); err != nil {
				return fmt.Errorf("device %s: %w", doc.Devices[i].ID, err)
			}
		}
	}
	return nil
}
