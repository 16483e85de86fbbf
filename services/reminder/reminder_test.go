package reminder

import (
	"testing"
	"time"

	"concierge/models"
)

const (
	leadLong  = 60 * time.Minute
	leadShort = 15 * time.Minute
)

func TestFireTimes_BothFuture(t *testing.T) {
	now := time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)

	fts, err := FireTimes("2025-08-02", "14:00", leadLong, leadShort, now)
	if err != nil {
		t.Fatalf("FireTimes: %v", err)
	}
	if len(fts) != 2 {
		t.Fatalf("expected 2 fire times, got %d", len(fts))
	}
	wantHour := time.Date(2025, 8, 2, 13, 0, 0, 0, time.UTC)
	wantQuarter := time.Date(2025, 8, 2, 13, 45, 0, 0, time.UTC)
	if !fts[0].At.Equal(wantHour) {
		t.Fatalf("1-hour fire time = %s, want %s", fts[0].At, wantHour)
	}
	if fts[0].Offset != models.ReminderOffsetHour {
		t.Fatalf("first offset = %s", fts[0].Offset)
	}
	if !fts[1].At.Equal(wantQuarter) {
		t.Fatalf("15-min fire time = %s, want %s", fts[1].At, wantQuarter)
	}
}

func TestFireTimes_PastTriggersAreSkipped(t *testing.T) {
	// Confirmed 30 minutes before the session: the 1-hour mark has passed.
	now := time.Date(2025, 8, 2, 13, 30, 0, 0, time.UTC)
	fts, err := FireTimes("2025-08-02", "14:00", leadLong, leadShort, now)
	if err != nil {
		t.Fatalf("FireTimes: %v", err)
	}
	if len(fts) != 1 {
		t.Fatalf("expected only the 15-min reminder, got %d", len(fts))
	}
	if fts[0].Offset != models.ReminderOffsetQuarter {
		t.Fatalf("offset = %s, want %s", fts[0].Offset, models.ReminderOffsetQuarter)
	}

	// Confirmed 5 minutes before: nothing left to schedule, not an error.
	now = time.Date(2025, 8, 2, 13, 55, 0, 0, time.UTC)
	fts, err = FireTimes("2025-08-02", "14:00", leadLong, leadShort, now)
	if err != nil {
		t.Fatalf("FireTimes: %v", err)
	}
	if len(fts) != 0 {
		t.Fatalf("expected no fire times, got %d", len(fts))
	}
}

func TestFireTimes_MalformedSlot(t *testing.T) {
	now := time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)
	if _, err := FireTimes("garbage", "14:00", leadLong, leadShort, now); err == nil {
		t.Fatal("expected error for malformed date")
	}
	if _, err := FireTimes("2025-08-02", "2pm", leadLong, leadShort, now); err == nil {
		t.Fatal("expected error for malformed time")
	}
}

func TestTaskID_StablePerBookingAndOffset(t *testing.T) {
	a := TaskID("bk-1", models.ReminderOffsetHour)
	b := TaskID("bk-1", models.ReminderOffsetHour)
	if a != b {
		t.Fatalf("task id not stable: %s vs %s", a, b)
	}
	if a == TaskID("bk-1", models.ReminderOffsetQuarter) {
		t.Fatal("offsets must produce distinct task ids")
	}
	if a == TaskID("bk-2", models.ReminderOffsetHour) {
		t.Fatal("bookings must produce distinct task ids")
	}
}

func TestRecipients_MasterBookingRemindsBothSides(t *testing.T) {
	booking := &models.Booking{
		ID:            "bk-1",
		ClientID:      "client-9",
		ClientName:    "Alex",
		EntityID:      "master-1",
		EntityName:    "Marina",
		SlotDate:      "2025-08-02",
		SlotStartTime: "14:00",
		SlotEndTime:   "15:00",
		Location:      "Sauna",
	}

	rs := Recipients(booking, leadShort)
	if len(rs) != 2 {
		t.Fatalf("expected client and master, got %d recipients", len(rs))
	}
	if rs[0].Role != "client" || rs[0].ID != "client-9" {
		t.Fatalf("unexpected first recipient: %+v", rs[0])
	}
	if rs[1].Role != "master" || rs[1].ID != "master-1" {
		t.Fatalf("unexpected second recipient: %+v", rs[1])
	}
}

func TestRecipients_DeviceBookingRemindsClientOnly(t *testing.T) {
	booking := &models.Booking{
		ID:         "bk-2",
		ClientID:   "client-9",
		EntityID:   "vibro_chair",
		EntityName: "Vibro Chair",
		IsDevice:   true,
		Location:   "Rescue Station",
	}

	rs := Recipients(booking, leadLong)
	if len(rs) != 1 {
		t.Fatalf("expected client only, got %d recipients", len(rs))
	}
	if rs[0].Role != "client" {
		t.Fatalf("unexpected recipient: %+v", rs[0])
	}
}
