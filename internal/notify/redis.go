package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRedisKey is the list jobs are pushed to.
const DefaultRedisKey = "storefront:notify"

// RedisQueue pushes jobs onto a Redis list so they survive a restart and can
// be drained by any instance.
type RedisQueue struct {
	rdb *redis.Client
	key string
	log *zap.Logger
}

func NewRedisQueue(rdb *redis.Client, key string, log *zap.Logger) *RedisQueue {
	if key == "" {
		key = DefaultRedisKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisQueue{rdb: rdb, key: key, log: log}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, b).Err()
}

// Run pops jobs until ctx is canceled. BRPOP uses a short timeout so
// cancellation is noticed promptly.
func (q *RedisQueue) Run(ctx context.Context, h Handler) {
	for {
		if ctx.Err() != nil {
			return
		}
		res, err := q.rdb.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.log.Error("notify.redis.pop", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		// res is [key, value]
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			q.log.Error("notify.redis.decode", zap.Error(err), zap.String("payload", res[1]))
			continue
		}
		run(ctx, q.log, h, job)
	}
}

// Start runs workers goroutines draining the list.
func (q *RedisQueue) Start(ctx context.Context, workers int, h Handler) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go q.Run(ctx, h)
	}
}
