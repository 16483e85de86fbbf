// File: services/interpreter/fallback.go
package interpreter

import (
	"regexp"
	"strings"

	"concierge/models"
)

var slotLinePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{1,2}:\d{2})\s*[-–]\s*(\d{1,2}:\d{2})(?:\s*@\s*(.+))?`)

// FallbackSlots parses explicitly formatted slot lines without any model
// call. Accepted line shape: "2025-08-02 14:00-15:00" with an optional
// "@ Location" suffix. Lines that do not match are skipped.
func FallbackSlots(text, defaultLocation string) []models.Slot {
	var slots []models.Slot
	for _, line := range strings.Split(text, "\n") {
		m := slotLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		slot := models.Slot{
			Date:      m[1],
			StartTime: padClock(m[2]),
			EndTime:   padClock(m[3]),
			Location:  defaultLocation,
		}
		if m[4] != "" {
			slot.Location = strings.TrimSpace(m[4])
		}
		if slot.Validate() == nil {
			slots = append(slots, slot)
		}
	}
	return slots
}

// FallbackProfile builds a minimal profile when the model is unavailable:
// the first line becomes the name, the raw text stands in as the service
// description untouched.
func FallbackProfile(text string) *Profile {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	name := strings.TrimSpace(lines[0])
	if name == "" {
		name = "Practitioner"
	}
	var services []string
	if len(lines) > 1 {
		services = append(services, strings.TrimSpace(strings.Join(lines[1:], " ")))
	}
	return &Profile{Name: name, Services: services}
}

func padClock(s string) string {
	if len(s) == 4 {
		return "0" + s
	}
	return s
}
