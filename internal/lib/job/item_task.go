package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

// TaskItemStatus notifies an item owner that an action changed the item.
const TaskItemStatus = "item:status"

// ItemStatusPayload is the JSON body of a TaskItemStatus task.
type ItemStatusPayload struct {
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name"`
	Action   string `json:"action"`
	To       string `json:"to"`
}

// NewItemStatusTask builds the task for p.
func NewItemStatusTask(p ItemStatusPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskItemStatus,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// EnqueueItemStatus queues a TaskItemStatus task.
func (j *JobService) EnqueueItemStatus(ctx context.Context, p ItemStatusPayload) error {
	task, err := NewItemStatusTask(p)
	if err != nil {
		return errors.Wrap(err, "build item status task")
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return errors.Wrap(err, "enqueue item status task")
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Int64("item_id", p.ItemID).
		Msg("item status task enqueued")
	return nil
}
