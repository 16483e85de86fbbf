package reminder

import (
	"context"
	"testing"
	"time"

	"concierge/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// fakeQueue mirrors asynq's task-id semantics: enqueueing a held id
// conflicts, deleting a missing id reports not-found.
type fakeQueue struct {
	scheduled map[string]time.Time
	enqueues  int
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{scheduled: make(map[string]time.Time)}
}

func (q *fakeQueue) Enqueue(_ context.Context, _ *asynq.Task, opts ...asynq.Option) error {
	q.enqueues++
	var id string
	var at time.Time
	for _, opt := range opts {
		switch opt.Type() {
		case asynq.TaskIDOpt:
			id = opt.Value().(string)
		case asynq.ProcessAtOpt:
			at = opt.Value().(time.Time)
		}
	}
	if _, exists := q.scheduled[id]; exists {
		return asynq.ErrTaskIDConflict
	}
	q.scheduled[id] = at
	return nil
}

func (q *fakeQueue) Delete(taskID string) error {
	if _, exists := q.scheduled[taskID]; !exists {
		return asynq.ErrTaskNotFound
	}
	delete(q.scheduled, taskID)
	return nil
}

func newFakeScheduler(q *fakeQueue) *AsynqScheduler {
	return &AsynqScheduler{
		jobs:      q,
		leadLong:  time.Hour,
		leadShort: 15 * time.Minute,
		logger:    zap.NewNop(),
	}
}

var armTestBooking = &models.Booking{
	ID:            "b-1",
	ClientID:      "c-1",
	ClientName:    "Guest",
	EntityID:      "m-1",
	EntityName:    "Anna",
	SlotDate:      "2025-08-02",
	SlotStartTime: "14:00",
	SlotEndTime:   "15:00",
	Location:      "Sauna",
	Status:        models.StatusConfirmed,
}

func TestArmSchedulesBothJobs(t *testing.T) {
	q := newFakeQueue()
	s := newFakeScheduler(q)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.Local)

	if err := s.Arm(context.Background(), armTestBooking, now); err != nil {
		t.Fatalf("arm: %v", err)
	}
	if len(q.scheduled) != 2 {
		t.Fatalf("expected 2 scheduled jobs, got %d", len(q.scheduled))
	}
	for _, offset := range []string{models.ReminderOffsetHour, models.ReminderOffsetQuarter} {
		if _, ok := q.scheduled[TaskID("b-1", offset)]; !ok {
			t.Errorf("missing job for offset %s", offset)
		}
	}
}

func TestArmTwiceReplacesInsteadOfDuplicating(t *testing.T) {
	q := newFakeQueue()
	s := newFakeScheduler(q)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.Local)
	ctx := context.Background()

	if err := s.Arm(ctx, armTestBooking, now); err != nil {
		t.Fatalf("first arm: %v", err)
	}
	if err := s.Arm(ctx, armTestBooking, now.Add(time.Minute)); err != nil {
		t.Fatalf("second arm: %v", err)
	}

	if len(q.scheduled) != 2 {
		t.Fatalf("re-arm must replace, not duplicate: got %d jobs", len(q.scheduled))
	}
	if q.enqueues != 4 {
		t.Fatalf("expected 4 enqueue attempts across both arms, got %d", q.enqueues)
	}
}

func TestDisarmRemovesScheduledJobs(t *testing.T) {
	q := newFakeQueue()
	s := newFakeScheduler(q)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.Local)
	ctx := context.Background()

	if err := s.Arm(ctx, armTestBooking, now); err != nil {
		t.Fatalf("arm: %v", err)
	}
	if err := s.Disarm(ctx, "b-1"); err != nil {
		t.Fatalf("disarm: %v", err)
	}
	if len(q.scheduled) != 0 {
		t.Fatalf("expected no jobs after disarm, got %d", len(q.scheduled))
	}

	// Disarming again is a no-op, not an error.
	if err := s.Disarm(ctx, "b-1"); err != nil {
		t.Fatalf("repeat disarm: %v", err)
	}
}
