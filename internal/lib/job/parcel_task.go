package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskParcelCreated is the job type name stored in Redis.
	TaskParcelCreated = "email:parcel_created"
)

// ParcelCreatedPayload is the JSON payload of the parcel-created task.
type ParcelCreatedPayload struct {
	To       string `json:"to"`
	ParcelID string `json:"parcel_id"`
	Title    string `json:"title,omitempty"`
}

// NewParcelCreatedTask builds the task: up to 3 retries on the default
// queue, each attempt limited to 30 seconds.
func NewParcelCreatedTask(to, parcelID, title string) (*asynq.Task, error) {
	payload, err := json.Marshal(ParcelCreatedPayload{
		To:       to,
		ParcelID: parcelID,
		Title:    title,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskParcelCreated,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// EnqueueParcelCreated queues the notification for a freshly created parcel.
func (j *JobService) EnqueueParcelCreated(ctx context.Context, to, parcelID, title string) error {
	task, err := NewParcelCreatedTask(to, parcelID, title)
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("parcel_id", parcelID).
		Msg("parcel created task enqueued")
	return nil
}
