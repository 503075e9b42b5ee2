package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

func (j *JobService) handleItemStatusTask(ctx context.Context, t *asynq.Task) error {
	var p ItemStatusPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A malformed payload never succeeds, so do not retry it.
		return fmt.Errorf("failed to unmarshal item status payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", TaskItemStatus).
		Int64("item_id", p.ItemID).
		Str("action", p.Action).
		Logger()

	if p.To == "" {
		logger.Warn().Msg("item owner has no email address, skipping notification")
		return nil
	}

	logger.Info().Msg("processing item status task")

	if err := j.mailer.SendItemStatusEmail(p.To, p.ItemID, p.ItemName, p.Action); err != nil {
		logger.Error().Err(err).Msg("failed to send item status email")
		return err
	}

	logger.Info().Msg("sent item status email")
	return nil
}
