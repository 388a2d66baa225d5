package service

import (
	"context"
	"errors"
	"time"

	"nexus-store/internal/events"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// publishTimeout bounds event delivery after a request has committed.
const publishTimeout = 5 * time.Second

// rollbackOnError rolls tx back when *errp is non-nil. Use it deferred
// with a named error result.
func rollbackOnError(ctx context.Context, tx pgx.Tx, errp *error, logger zerolog.Logger) {
	if *errp == nil {
		return
	}
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		logger.Error().Err(rbErr).Msg("failed to rollback transaction")
	}
}

// publish delivers e outside the request's cancellation. Failures are logged
// and never reach the caller; the state change has already committed.
func publish(ctx context.Context, p events.Publisher, e events.Event, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, e); err != nil {
		logger.Warn().
			Err(err).
			Str("event", e.Type).
			Str("order_id", e.OrderID.String()).
			Msg("failed to publish event")
	}
}
