// File: services/booking/service_test.go
package booking

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	documentRepo "concierge/database/repository/document"
	"concierge/models"
)

type fakeScheduler struct {
	mu       sync.Mutex
	armed    []string
	disarmed []string
}

func (f *fakeScheduler) Arm(_ context.Context, b *models.Booking, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = append(f.armed, b.ID)
	return nil
}

func (f *fakeScheduler) Disarm(_ context.Context, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disarmed = append(f.disarmed, bookingID)
	return nil
}

type sentMessage struct {
	PrincipalID string
	Title       string
	Body        string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeNotifier) Send(_ context.Context, principalID, title, body string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{PrincipalID: principalID, Title: title, Body: body})
	return nil
}

func (f *fakeNotifier) to(principalID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.PrincipalID == principalID {
			out = append(out, m)
		}
	}
	return out
}

var testNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.Local)

func newTestService(t *testing.T) (*DefaultBookingService, *fakeScheduler, *fakeNotifier) {
	t.Helper()
	store, err := documentRepo.Open(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	master := &models.Master{
		TelegramID: "master-1",
		Name:       "Anna",
		Services:   []string{"massage"},
		TimeSlots: []models.Slot{
			{Date: "2025-08-02", StartTime: "14:00", EndTime: "15:00", Location: "Sauna"},
			{Date: "2025-08-02", StartTime: "16:00", EndTime: "17:00", Location: "Sauna"},
			{Date: "2025-08-03", StartTime: "10:00", EndTime: "11:00", Location: "Rescue Station"},
			{Date: "2025-07-01", StartTime: "14:00", EndTime: "15:00", Location: "Sauna"},
		},
		IsActive:  true,
		CreatedAt: testNow,
	}
	if err := store.Masters().Create(context.Background(), master); err != nil {
		t.Fatalf("seed master: %v", err)
	}

	device := &models.Device{
		ID:              "device-1",
		Name:            "Cedar Barrel",
		Location:        "Glamping",
		SessionDuration: 60,
		OwnerID:         "owner-1",
		TimeSlots: []models.Slot{
			{Date: "2025-08-02", StartTime: "18:00", EndTime: "19:00", Location: "Glamping"},
		},
		IsActive:  true,
		CreatedAt: testNow,
	}
	if err := store.Devices().Create(context.Background(), device); err != nil {
		t.Fatalf("seed device: %v", err)
	}

	sched := &fakeScheduler{}
	notif := &fakeNotifier{}
	svc := &DefaultBookingService{
		Masters:     store.Masters(),
		Devices:     store.Devices(),
		Bookings:    store.Bookings(),
		Reminders:   sched,
		Notifier:    notif,
		MaxBookings: 2,
		Now:         func() time.Time { return testNow },
	}
	return svc, sched, notif
}

func request(clientID string, slot models.SlotRef) BookingRequest {
	return BookingRequest{
		ClientID:   clientID,
		ClientName: "Guest " + clientID,
		EntityID:   "master-1",
		Slot:       slot,
	}
}

var saunaSlot = models.SlotRef{Date: "2025-08-02", StartTime: "14:00"}

func TestRequestConfirmLifecycle(t *testing.T) {
	svc, sched, notif := newTestService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, request("client-1", saunaSlot))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if b.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if msgs := notif.to("master-1"); len(msgs) != 1 {
		t.Fatalf("expected 1 notification to master, got %d", len(msgs))
	}
	if len(sched.armed) != 0 {
		t.Fatalf("pending booking must not arm reminders")
	}

	confirmed, err := svc.ConfirmBooking(ctx, "master-1", b.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != models.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}
	if len(sched.armed) != 1 || sched.armed[0] != b.ID {
		t.Fatalf("expected reminders armed for %s, got %v", b.ID, sched.armed)
	}
	if msgs := notif.to("client-1"); len(msgs) != 1 || msgs[0].Title != "Booking confirmed" {
		t.Fatalf("expected confirmation to client, got %v", msgs)
	}
}

func TestConcurrentRequestsOneWinner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	const racers = 8
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.RequestBooking(ctx, request(string(rune('a'+n)), saunaSlot))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotUnavailable):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d (losses %d)", wins, losses)
	}
}

func TestBookingCapPerEntity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	slots := []models.SlotRef{
		saunaSlot,
		{Date: "2025-08-02", StartTime: "16:00"},
		{Date: "2025-08-03", StartTime: "10:00"},
	}
	for _, ref := range slots[:2] {
		if _, err := svc.RequestBooking(ctx, request("client-1", ref)); err != nil {
			t.Fatalf("request %v: %v", ref, err)
		}
	}

	_, err := svc.RequestBooking(ctx, request("client-1", slots[2]))
	if !IsLimitError(err) {
		t.Fatalf("expected LimitError, got %v", err)
	}

	// A different client is unaffected by the first client's cap.
	if _, err := svc.RequestBooking(ctx, request("client-2", slots[2])); err != nil {
		t.Fatalf("second client blocked: %v", err)
	}
}

func TestDeclineRequiresReasonAndReleasesSlot(t *testing.T) {
	svc, _, notif := newTestService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, request("client-1", saunaSlot))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.DeclineBooking(ctx, "master-1", b.ID, ""); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	declined, err := svc.DeclineBooking(ctx, "master-1", b.ID, "family emergency")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != models.StatusDeclined || declined.DeclineReason != "family emergency" {
		t.Fatalf("unexpected declined booking: %+v", declined)
	}
	msgs := notif.to("client-1")
	if len(msgs) != 1 || msgs[0].Title != "Booking declined" {
		t.Fatalf("expected decline notification, got %v", msgs)
	}

	// The slot is free again after decline.
	if _, err := svc.RequestBooking(ctx, request("client-2", saunaSlot)); err != nil {
		t.Fatalf("rebooking declined slot: %v", err)
	}
}

func TestCancelSlotCascades(t *testing.T) {
	svc, sched, notif := newTestService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, request("client-1", saunaSlot))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.ConfirmBooking(ctx, "master-1", b.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if err := svc.CancelSlot(ctx, "master-1", saunaSlot, "pipe burst in the sauna"); err != nil {
		t.Fatalf("cancel slot: %v", err)
	}

	got, err := svc.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != models.StatusCancelled || got.CancelReason != "pipe burst in the sauna" {
		t.Fatalf("unexpected booking after cascade: %+v", got)
	}
	if len(sched.disarmed) != 1 || sched.disarmed[0] != b.ID {
		t.Fatalf("expected reminders disarmed, got %v", sched.disarmed)
	}
	msgs := notif.to("client-1")
	last := msgs[len(msgs)-1]
	if last.Title != "Session cancelled" {
		t.Fatalf("expected cancellation notice, got %v", last)
	}

	// The slot is gone from the profile, not just freed.
	avail, err := svc.ListAvailable(ctx, "master-1")
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	for _, s := range avail {
		if s.Matches(saunaSlot) {
			t.Fatalf("cancelled slot still listed: %+v", s)
		}
	}
}

func TestDeviceBookingAutoConfirms(t *testing.T) {
	svc, sched, notif := newTestService(t)
	ctx := context.Background()

	req := BookingRequest{
		ClientID:   "client-1",
		ClientName: "Guest",
		EntityID:   "device-1",
		Slot:       models.SlotRef{Date: "2025-08-02", StartTime: "18:00"},
	}
	b, err := svc.RequestBooking(ctx, req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if b.Status != models.StatusConfirmed {
		t.Fatalf("device booking should be born confirmed, got %s", b.Status)
	}
	if len(sched.armed) != 1 {
		t.Fatalf("expected reminders armed immediately, got %v", sched.armed)
	}
	if msgs := notif.to("client-1"); len(msgs) != 1 || msgs[0].Title != "Booking confirmed" {
		t.Fatalf("expected immediate confirmation, got %v", msgs)
	}
	if msgs := notif.to("owner-1"); len(msgs) != 1 || msgs[0].Title != "New device booking" {
		t.Fatalf("expected one-off owner notice, got %v", msgs)
	}
}

func TestCancelDeviceBookingOwnerOnly(t *testing.T) {
	svc, sched, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, BookingRequest{
		ClientID: "client-1",
		EntityID: "device-1",
		Slot:     models.SlotRef{Date: "2025-08-02", StartTime: "18:00"},
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.CancelDeviceBooking(ctx, "intruder", b.ID, "because"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.CancelDeviceBooking(ctx, "owner-1", b.ID, ""); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	cancelled, err := svc.CancelDeviceBooking(ctx, "owner-1", b.ID, "maintenance")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if len(sched.disarmed) != 1 {
		t.Fatalf("expected disarm, got %v", sched.disarmed)
	}
}

func TestConfirmOwnershipAndExistence(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, request("client-1", saunaSlot))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.ConfirmBooking(ctx, "someone-else", b.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ConfirmBooking(ctx, "master-1", "no-such-booking"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAvailableExcludesHeldSlots(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	before, err := svc.ListAvailable(ctx, "master-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.RequestBooking(ctx, request("client-1", saunaSlot)); err != nil {
		t.Fatalf("request: %v", err)
	}
	after, err := svc.ListAvailable(ctx, "master-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(after) != len(before)-1 {
		t.Fatalf("expected one fewer slot, got %d -> %d", len(before), len(after))
	}
	for _, s := range after {
		if s.Matches(saunaSlot) {
			t.Fatalf("held slot still listed")
		}
	}
}

func TestUnlinkedMasterNotBookable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	unlinked := &models.Master{
		TelegramID: models.UnverifiedID,
		Name:       "Pending practitioner",
		TimeSlots: []models.Slot{
			{Date: "2025-08-02", StartTime: "12:00", EndTime: "13:00", Location: "Sauna"},
		},
		IsActive: true,
	}
	if err := svc.Masters.Create(ctx, unlinked); err != nil {
		t.Fatalf("seed unlinked master: %v", err)
	}

	_, err := svc.RequestBooking(ctx, BookingRequest{
		ClientID: "client-1",
		EntityID: models.UnverifiedID,
		Slot:     models.SlotRef{Date: "2025-08-02", StartTime: "12:00"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected unlinked master to be unbookable, got %v", err)
	}
}

func TestRequestUnknownEntityOrSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RequestBooking(ctx, BookingRequest{
		ClientID: "client-1",
		EntityID: "ghost",
		Slot:     saunaSlot,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = svc.RequestBooking(ctx, request("client-1", models.SlotRef{Date: "2025-08-02", StartTime: "03:00"}))
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	// A published slot in the past is never bookable.
	_, err = svc.RequestBooking(ctx, BookingRequest{
		ClientID: "client-1",
		EntityID: "master-1",
		Slot:     models.SlotRef{Date: "2025-07-01", StartTime: "14:00"},
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable for past slot, got %v", err)
	}
}
