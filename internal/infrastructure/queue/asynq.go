package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/AliiiBenn/mini-auth/internal/application/ports"
)

const (
	TypeTokenCleanup = "maintenance:token_cleanup"
	TypeAPIKeyTouch  = "apikey:touch"
)

type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *TaskEnqueuer {
	return &TaskEnqueuer{client: asynq.NewClient(redisOpt), log: log}
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) EnqueueTokenCleanup(ctx context.Context) error {
	task := asynq.NewTask(TypeTokenCleanup, nil)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Msg("enqueue token cleanup failed")
		return err
	}
	return nil
}

func (q *TaskEnqueuer) EnqueueAPIKeyTouch(ctx context.Context, key string) error {
	payload, _ := json.Marshal(map[string]string{"key": key})
	task := asynq.NewTask(TypeAPIKeyTouch, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Msg("enqueue api key touch failed")
		return err
	}
	return nil
}

var _ ports.TaskEnqueuer = (*TaskEnqueuer)(nil)
