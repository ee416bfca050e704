package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/parcelhub/parcel-server/internal/config"
	"github.com/parcelhub/parcel-server/internal/lib/email"
	"github.com/rs/zerolog"
)

// InitHandlers builds the dependencies the task handlers need.
func (j *JobService) InitHandlers(config *config.Config, logger *zerolog.Logger) {
	j.mailer = email.NewClient(config, logger)
}

// handleParcelCreatedTask sends the booking confirmation. Returning an error
// makes Asynq retry the task.
func (j *JobService) handleParcelCreatedTask(ctx context.Context, t *asynq.Task) error {
	var p ParcelCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal parcel created payload: %w: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", "parcel_created").
		Str("to", p.To).
		Str("parcel_id", p.ParcelID).
		Msg("Processing parcel created email task")

	if err := j.mailer.SendParcelCreatedEmail(ctx, p.To, p.ParcelID, p.Title); err != nil {
		j.logger.Error().
			Str("type", "parcel_created").
			Str("to", p.To).
			Err(err).
			Msg("Failed to send parcel created email")
		return err
	}

	j.logger.Info().
		Str("type", "parcel_created").
		Str("to", p.To).
		Msg("Successfully sent parcel created email")

	return nil
}
