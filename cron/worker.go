// File: cron/worker.go
package cron

import (
	"context"
	"encoding/json"
	"time"

	"concierge/config"
	"concierge/models"
	"concierge/services/notification"
	"concierge/services/reminder"
	"concierge/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitReminderWorker runs the async reminder worker in background. Jobs are
// enqueued by the booking service at confirm time; this side only delivers.
func InitReminderWorker(notifier notification.Notifier) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(reminder.TypeSendReminder, handleReminderTask(notifier))

	go monitorRedisConnection()

	go func() {
		logger := utils.GetLogger()
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("Reminder worker failed to start",
					zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("Reminder worker exhausted retries")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleReminderTask fans one fired reminder out to its recipients. Delivery
// failures for individual recipients are logged and do not re-queue the task:
// a reminder delivered to one side is better than a duplicate to both.
func handleReminderTask(notifier notification.Notifier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return err
		}

		logger.Info("Firing reminder",
			zap.String("booking_id", p.BookingID),
			zap.String("offset", p.Offset),
			zap.Int("recipients", len(p.Recipients)))

		data := map[string]string{
			"booking_id": p.BookingID,
			"offset":     p.Offset,
		}
		for _, r := range p.Recipients {
			if err := notifier.Send(ctx, r.ID, r.Title, r.Body, data); err != nil {
				logger.Error("Failed to deliver reminder",
					zap.String("booking_id", p.BookingID),
					zap.String("recipient", r.ID),
					zap.String("role", r.Role),
					zap.Error(err))
			}
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := utils.GetReminderQueueClient()
	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			utils.GetLogger().Warn("Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
