package models

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the calendar-date wire format used across the store.
	DateLayout = "2006-01-02"
	// TimeLayout is the wall-clock wire format used across the store.
	TimeLayout = "15:04"
)

// Slot is a published availability window. A slot has no identity of its
// own: it is keyed by the (owning entity, date, start_time) tuple.
type Slot struct {
	Date      string `bson:"date" json:"date"`             // "2006-01-02"
	StartTime string `bson:"start_time" json:"start_time"` // "15:04"
	EndTime   string `bson:"end_time" json:"end_time"`     // "15:04"
	Location  string `bson:"location" json:"location"`
}

// SlotRef identifies a slot within its owner's list.
type SlotRef struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
}

// StartsAt parses the slot's date and start time into a single instant in
// the given location. An error here means the slot data is malformed.
func (s Slot) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.StartTime, loc)
}

// Validate checks the wire formats and the start < end ordering.
func (s Slot) Validate() error {
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return fmt.Errorf("invalid slot date %q: %w", s.Date, err)
	}
	start, err := time.Parse(TimeLayout, s.StartTime)
	if err != nil {
		return fmt.Errorf("invalid slot start time %q: %w", s.StartTime, err)
	}
	end, err := time.Parse(TimeLayout, s.EndTime)
	if err != nil {
		return fmt.Errorf("invalid slot end time %q: %w", s.EndTime, err)
	}
	if !start.Before(end) {
		return fmt.Errorf("slot start %s must be before end %s", s.StartTime, s.EndTime)
	}
	return nil
}

// Matches reports whether the slot is the one the ref points at.
func (s Slot) Matches(ref SlotRef) bool {
	return s.Date == ref.Date && s.StartTime == ref.StartTime
}
