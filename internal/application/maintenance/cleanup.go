package maintenance

import (
	"context"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
)

// RunTokenCleanup deletes refresh tokens that are expired or revoked and
// returns the number of rows removed. Call periodically; the sweep is
// idempotent and an empty ledger yields zero, not an error.
func RunTokenCleanup(ctx context.Context, ledger ports.TokenLedger) (int64, error) {
	return ledger.PurgeExpired(ctx)
}
