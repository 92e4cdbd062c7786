package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
)

// InlineEnqueuer runs maintenance tasks synchronously when Redis/Asynq is not
// configured. Good enough for development and single-instance deployments.
type InlineEnqueuer struct {
	ledger  ports.TokenLedger
	apiKeys ports.APIKeyRepository
	log     zerolog.Logger
}

func NewInlineEnqueuer(ledger ports.TokenLedger, apiKeys ports.APIKeyRepository, log zerolog.Logger) *InlineEnqueuer {
	return &InlineEnqueuer{ledger: ledger, apiKeys: apiKeys, log: log}
}

func (q *InlineEnqueuer) EnqueueTokenCleanup(ctx context.Context) error {
	purged, err := q.ledger.PurgeExpired(ctx)
	if err != nil {
		q.log.Error().Err(err).Msg("inline token cleanup failed")
		return err
	}
	q.log.Debug().Int64("purged", purged).Msg("inline token cleanup done")
	return nil
}

func (q *InlineEnqueuer) EnqueueAPIKeyTouch(ctx context.Context, key string) error {
	return q.apiKeys.TouchLastUsed(ctx, key)
}

var _ ports.TaskEnqueuer = (*InlineEnqueuer)(nil)
