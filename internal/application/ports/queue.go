package ports

import "context"

// TaskEnqueuer hands work to the background queue. Implementations may run
// the work inline when no queue backend is configured.
type TaskEnqueuer interface {
	// EnqueueTokenCleanup schedules a sweep deleting expired or revoked
	// refresh tokens.
	EnqueueTokenCleanup(ctx context.Context) error
	// EnqueueAPIKeyTouch schedules a last_used_at update for the given key.
	EnqueueAPIKeyTouch(ctx context.Context, key string) error
}
