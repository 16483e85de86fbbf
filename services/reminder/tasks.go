package reminder

import (
	"encoding/json"
	"time"

	"concierge/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds the delayed asynq task for one reminder job. The
// deterministic task id makes re-arming a replace instead of a duplicate.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(TaskID(payload.BookingID, payload.Offset)),
	}

	return task, opts, nil
}
