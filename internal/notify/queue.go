// Package notify delivers out-of-band notifications, such as the "order
// created" email, through a job queue drained by background workers.
package notify

import (
	"context"
	"errors"
)

// KindOrderCreated is enqueued once per successfully assembled order.
const KindOrderCreated = "order.created"

type Job struct {
	Kind    string `json:"kind"`
	OrderID string `json:"order_id"`
}

// Queue accepts jobs for asynchronous handling. Enqueue never waits for the
// job to run.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Handler runs one job.
type Handler func(ctx context.Context, job Job) error

var ErrQueueFull = errors.New("notify: queue full")
