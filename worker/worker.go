package worker

import (
	"context"
	"time"
)

// Worker long running task
type Worker interface {
	Run(ctx context.Context) error
}

// TickWorker runs a body on a fixed interval until the context ends. A
// failing tick is logged by the body and does not stop the loop.
type TickWorker struct {
	Delay time.Duration
}

func (w *TickWorker) StartTick(ctx context.Context, onWork func(ctx context.Context) error) error {
	delay := w.Delay
	if delay <= 0 {
		delay = 10 * time.Second
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = onWork(ctx)
		}
	}
}
