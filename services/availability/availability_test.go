package availability

import (
	"testing"
	"time"

	"concierge/models"
)

func slot(date, start, end string) models.Slot {
	return models.Slot{Date: date, StartTime: start, EndTime: end, Location: "Sauna"}
}

func activeBooking(date, start, status string) models.Booking {
	return models.Booking{
		ID:            "b-" + date + "-" + start,
		EntityID:      "m1",
		SlotDate:      date,
		SlotStartTime: start,
		Status:        status,
	}
}

func TestAvailable_ExcludesPastSlots(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	slots := []models.Slot{
		slot("2025-08-01", "10:00", "11:00"), // already started
		slot("2025-08-01", "12:00", "13:00"), // starts exactly now
		slot("2025-08-01", "14:00", "15:00"), // future
		slot("2025-08-02", "09:00", "10:00"), // future
	}

	got := Available(slots, nil, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 future slots, got %d: %+v", len(got), got)
	}
	if got[0].StartTime != "14:00" || got[1].Date != "2025-08-02" {
		t.Fatalf("unexpected slots: %+v", got)
	}
}

func TestAvailable_ExcludesActivelyBookedSlots(t *testing.T) {
	now := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)
	slots := []models.Slot{
		slot("2025-08-02", "14:00", "15:00"),
		slot("2025-08-02", "15:00", "16:00"),
		slot("2025-08-02", "16:00", "17:00"),
		slot("2025-08-02", "17:00", "18:00"),
	}
	bookings := []models.Booking{
		activeBooking("2025-08-02", "14:00", models.StatusPending),
		activeBooking("2025-08-02", "15:00", models.StatusConfirmed),
		activeBooking("2025-08-02", "16:00", models.StatusDeclined),  // released
		activeBooking("2025-08-02", "17:00", models.StatusCancelled), // released
	}

	got := Available(slots, bookings, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 free slots, got %d: %+v", len(got), got)
	}
	if got[0].StartTime != "16:00" || got[1].StartTime != "17:00" {
		t.Fatalf("unexpected slots: %+v", got)
	}
}

func TestAvailable_MalformedSlotIsUnavailable(t *testing.T) {
	now := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)
	slots := []models.Slot{
		{Date: "not-a-date", StartTime: "14:00", EndTime: "15:00"},
		{Date: "2025-08-02", StartTime: "2pm", EndTime: "15:00"},
		{Date: "", StartTime: "", EndTime: ""},
		slot("2025-08-02", "14:00", "15:00"),
	}

	got := Available(slots, nil, now)
	if len(got) != 1 {
		t.Fatalf("expected only the well-formed slot, got %d: %+v", len(got), got)
	}
	if got[0].StartTime != "14:00" {
		t.Fatalf("unexpected slot: %+v", got[0])
	}
}

func TestAvailable_StableUnderRepeatedCalls(t *testing.T) {
	now := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)
	slots := []models.Slot{
		slot("2025-08-02", "14:00", "15:00"),
		slot("2025-08-03", "10:00", "11:00"),
	}
	bookings := []models.Booking{activeBooking("2025-08-02", "14:00", models.StatusPending)}

	first := Available(slots, bookings, now)
	second := Available(slots, bookings, now)
	if len(first) != len(second) {
		t.Fatalf("results differ across calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("slot %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCount_MatchesAvailable(t *testing.T) {
	now := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		slots    []models.Slot
		bookings []models.Booking
	}{
		{"empty", nil, nil},
		{"all free", []models.Slot{slot("2025-08-02", "14:00", "15:00")}, nil},
		{
			"some booked",
			[]models.Slot{
				slot("2025-08-02", "14:00", "15:00"),
				slot("2025-08-02", "15:00", "16:00"),
			},
			[]models.Booking{activeBooking("2025-08-02", "14:00", models.StatusConfirmed)},
		},
		{
			"past and malformed",
			[]models.Slot{
				slot("2020-01-01", "10:00", "11:00"),
				{Date: "bogus", StartTime: "10:00", EndTime: "11:00"},
			},
			nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			want := len(Available(tc.slots, tc.bookings, now))
			if got := Count(tc.slots, tc.bookings, now); got != want {
				t.Fatalf("Count = %d, len(Available) = %d", got, want)
			}
		})
	}
}
