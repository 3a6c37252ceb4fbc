package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryQueue is an in-process worker pool over a buffered channel.
type MemoryQueue struct {
	jobs chan Job
	log  *zap.Logger
	wg   sync.WaitGroup
}

func NewMemoryQueue(size int, log *zap.Logger) *MemoryQueue {
	if size < 1 {
		size = 64
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryQueue{jobs: make(chan Job, size), log: log}
}

// Enqueue fails with ErrQueueFull rather than block the request.
func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Start launches workers that run h until ctx is canceled. Jobs still
// buffered at that point are dropped.
func (q *MemoryQueue) Start(ctx context.Context, workers int, h Handler) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func(id int) {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-q.jobs:
					run(ctx, q.log.With(zap.Int("worker", id)), h, job)
				}
			}
		}(i)
	}
}

// Wait blocks until every worker has returned.
func (q *MemoryQueue) Wait() { q.wg.Wait() }

func run(ctx context.Context, log *zap.Logger, h Handler, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("notify.panic", zap.Any("panic", r), zap.String("kind", job.Kind), zap.String("order_id", job.OrderID))
		}
	}()
	if err := h(ctx, job); err != nil {
		log.Error("notify.failed", zap.Error(err), zap.String("kind", job.Kind), zap.String("order_id", job.OrderID))
		return
	}
	log.Info("notify.done", zap.String("kind", job.Kind), zap.String("order_id", job.OrderID))
}
