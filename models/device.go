package models

import "time"

// Device is a bookable piece of equipment. Devices have no approval step:
// bookings against them are born confirmed.
type Device struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Icon            string    `bson:"icon,omitempty" json:"icon,omitempty"`
	Location        string    `bson:"location" json:"location"`
	SessionDuration int       `bson:"session_duration" json:"session_duration"` // minutes
	OwnerID         string    `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	TimeSlots       []Slot    `bson:"time_slots" json:"time_slots"`
	IsActive        bool      `bson:"is_active" json:"is_active"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
