// Package documentRepo adapts the JSON document store to the repository
// interfaces. One mutex guards every read-modify-write against the shared
// document, so the availability check and the booking insert commit as a
// single step — the same guarantee the MongoDB backend gets from its
// partial unique index.
package documentRepo

import (
	"sync"

	"concierge/database/docstore"
	"concierge/database/repository"
)

// Store owns the in-memory document and its file persistence.
type Store struct {
	mu   sync.Mutex
	file *docstore.Store
	doc  *docstore.Document
}

// Open loads (or bootstraps) the document from path.
func Open(path string) (*Store, error) {
	file := docstore.New(path)
	doc, err := file.Load()
	if err != nil {
		return nil, err
	}
	return &Store{file: file, doc: doc}, nil
}

// commitLocked saves doc and promotes it to the live document. Callers hold
// s.mu and pass a clone; the live document stays untouched until the save has
// succeeded, so a failed write leaves no partial state behind.
func (s *Store) commitLocked(doc *docstore.Document) error {
	if err := s.file.Save(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// MaxBookings returns the per-master booking cap persisted in the document,
// or 0 when the document does not set one.
func (s *Store) MaxBookings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Settings.MaxBookingsPerMaster
}

// Masters returns the master repository view of the store.
func (s *Store) Masters() repository.MasterRepository { return &masterView{s} }

// Devices returns the device repository view of the store.
func (s *Store) Devices() repository.DeviceRepository { return &deviceView{s} }

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() repository.BookingRepository { return &bookingView{s} }

// Locations returns the location repository view of the store.
func (s *Store) Locations() repository.LocationRepository { return &locationView{s} }
