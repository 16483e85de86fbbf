// Package interpreter wraps the natural-language extraction service the
// conversational layer relies on. It is optional enrichment: every caller
// must be prepared for it to fail or time out and fall back to the
// deterministic parsing in this package.
package interpreter

import (
	"context"
	"errors"
	"time"

	"concierge/models"
)

// ErrInterpreter wraps any extraction failure. It is logged by callers and
// never shown to users; a fallback value is substituted instead.
var ErrInterpreter = errors.New("interpreter: extraction failed")

// Profile is the structured result of reading a master's free-text intake.
type Profile struct {
	Name               string        `json:"name"`
	Services           []string      `json:"services"`
	LocationPreference string        `json:"location_preference"`
	Slots              []models.Slot `json:"slots"`
}

// Interpreter extracts structured data from free text.
type Interpreter interface {
	// ExtractSlots reads a slot description ("tomorrow 2pm to 6pm in the
	// sauna, hour-long sessions") into concrete slots relative to refDate.
	ExtractSlots(ctx context.Context, text string, refDate time.Time) ([]models.Slot, error)
	// ExtractProfile reads a master's intake text into structured fields.
	ExtractProfile(ctx context.Context, text string) (*Profile, error)
	// StyleDescription rewrites the raw profile text into the retreat's
	// persona voice.
	StyleDescription(ctx context.Context, raw string, profile *Profile) (string, error)
}
