package models

import "time"

// UnverifiedID is the placeholder principal id a master carries until the
// owning account has been linked.
const UnverifiedID = "unverified"

// Master is a practitioner who publishes time slots at the retreat.
type Master struct {
	TelegramID         string    `bson:"telegram_id" json:"telegram_id"`
	Name               string    `bson:"name" json:"name"`
	Services           []string  `bson:"services" json:"services"`
	LocationPreference string    `bson:"location_preference,omitempty" json:"location_preference,omitempty"`
	Description        string    `bson:"description,omitempty" json:"description,omitempty"`
	StyledDescription  string    `bson:"styled_description,omitempty" json:"styled_description,omitempty"`
	TimeSlots          []Slot    `bson:"time_slots" json:"time_slots"`
	IsActive           bool      `bson:"is_active" json:"is_active"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}

// Linked reports whether a real principal owns this profile yet.
func (m *Master) Linked() bool {
	return m.TelegramID != "" && m.TelegramID != UnverifiedID
}
