package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
)

// apiKeyTouchPayload matches the JSON enqueued by TaskEnqueuer.EnqueueAPIKeyTouch.
type apiKeyTouchPayload struct {
	Key string `json:"key"`
}

// Worker runs Asynq task handlers for background maintenance.
type Worker struct {
	srv     *asynq.Server
	mux     *asynq.ServeMux
	ledger  ports.TokenLedger
	apiKeys ports.APIKeyRepository
	log     zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisClientOpt, ledger ports.TokenLedger, apiKeys ports.APIKeyRepository, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, ledger: ledger, apiKeys: apiKeys, log: log}
	mux.HandleFunc(TypeTokenCleanup, w.handleTokenCleanup)
	mux.HandleFunc(TypeAPIKeyTouch, w.handleAPIKeyTouch)
	return w
}

func (w *Worker) handleTokenCleanup(ctx context.Context, t *asynq.Task) error {
	purged, err := w.ledger.PurgeExpired(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("token cleanup failed")
		return err
	}
	w.log.Info().Int64("purged", purged).Msg("token cleanup done")
	return nil
}

func (w *Worker) handleAPIKeyTouch(ctx context.Context, t *asynq.Task) error {
	var p apiKeyTouchPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("api key touch payload invalid")
		return err
	}
	return w.apiKeys.TouchLastUsed(ctx, p.Key)
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
