// File: services/booking/errors.go
package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the booking service. Handlers map these onto
// HTTP status codes; nothing below this layer knows about transports.
var (
	// ErrSlotUnavailable covers both "slot never published" and "slot already
	// held": the caller is told the same thing either way.
	ErrSlotUnavailable = errors.New("slot is not available")
	// ErrNotFound means the referenced booking, master, or device does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller does not own the booking or entity it is
	// trying to act on.
	ErrForbidden = errors.New("not allowed")
	// ErrReasonRequired means a decline or cancellation arrived without the
	// mandatory human-readable reason.
	ErrReasonRequired = errors.New("a reason is required")
	// ErrPersistence wraps storage failures the caller can do nothing about.
	ErrPersistence = errors.New("storage failure")
)

// LimitError reports that the client already holds the maximum number of
// active bookings with this entity.
type LimitError struct {
	EntityName string
	Max        int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("booking limit reached: at most %d active bookings with %s", e.Max, e.EntityName)
}

// IsLimitError reports whether err is a booking-cap rejection.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}
