package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// taskQueue is the slice of asynq the scheduler needs: enqueue one delayed
// task and delete one by id. Split out so the replace-not-duplicate logic is
// testable without Redis.
type taskQueue interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error
	Delete(taskID string) error
}

type asynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
}

func (q *asynqQueue) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	_, err := q.client.EnqueueContext(ctx, task, opts...)
	return err
}

func (q *asynqQueue) Delete(taskID string) error {
	return q.inspector.DeleteTask(q.queue, taskID)
}

// AsynqScheduler schedules reminder jobs on the asynq queue backed by Redis.
type AsynqScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	jobs      taskQueue
	leadLong  time.Duration
	leadShort time.Duration
	logger    *zap.Logger
}

// NewAsynqScheduler builds the production scheduler.
func NewAsynqScheduler(redisOpt asynq.RedisClientOpt, leadLong, leadShort time.Duration, logger *zap.Logger) *AsynqScheduler {
	client := asynq.NewClient(redisOpt)
	inspector := asynq.NewInspector(redisOpt)
	return &AsynqScheduler{
		client:    client,
		inspector: inspector,
		jobs:      &asynqQueue{client: client, inspector: inspector, queue: "default"},
		leadLong:  leadLong,
		leadShort: leadShort,
		logger:    logger,
	}
}

// Arm schedules the still-future reminders for the booking. Any previously
// scheduled job under the same (booking, offset) key is deleted first, so a
// retried confirm ends up with the same two jobs, never four.
func (s *AsynqScheduler) Arm(ctx context.Context, booking *models.Booking, now time.Time) error {
	fireTimes, err := FireTimes(booking.SlotDate, booking.SlotStartTime, s.leadLong, s.leadShort, now)
	if err != nil {
		return err
	}

	for _, ft := range fireTimes {
		payload := models.ReminderPayload{
			BookingID:  booking.ID,
			Offset:     ft.Offset,
			FireAt:     ft.At,
			Recipients: Recipients(booking, ft.Lead),
		}
		task, opts, err := NewReminderTask(payload, ft.At)
		if err != nil {
			return fmt.Errorf("failed to build reminder task: %w", err)
		}

		s.deleteQuietly(booking.ID, ft.Offset)
		if err := s.jobs.Enqueue(ctx, task, opts...); err != nil {
			return fmt.Errorf("failed to enqueue reminder %s/%s: %w", booking.ID, ft.Offset, err)
		}
		s.logger.Info("reminder armed",
			zap.String("bookingID", booking.ID),
			zap.String("offset", ft.Offset),
			zap.Time("fireAt", ft.At))
	}
	return nil
}

// Disarm removes both jobs for the booking if they are still scheduled.
// Jobs that never existed or already fired are skipped without error.
func (s *AsynqScheduler) Disarm(ctx context.Context, bookingID string) error {
	for _, offset := range []string{models.ReminderOffsetHour, models.ReminderOffsetQuarter} {
		s.deleteQuietly(bookingID, offset)
	}
	return nil
}

func (s *AsynqScheduler) deleteQuietly(bookingID, offset string) {
	err := s.jobs.Delete(TaskID(bookingID, offset))
	if err == nil {
		s.logger.Info("reminder disarmed",
			zap.String("bookingID", bookingID), zap.String("offset", offset))
		return
	}
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return
	}
	s.logger.Warn("failed to delete reminder task",
		zap.String("bookingID", bookingID), zap.String("offset", offset), zap.Error(err))
}

// Close releases the underlying Redis connections.
func (s *AsynqScheduler) Close() error {
	if err := s.client.Close(); err != nil {
		return err
	}
	return s.inspector.Close()
}
