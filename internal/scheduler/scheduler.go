package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task once right away and then on each tick until ctx is done.
// Runs are sequential: a tick that fires while task is still running is
// absorbed by the ticker rather than queued.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	EveryWithLogger(ctx, interval, name, task, nil)
}

func EveryWithLogger(ctx context.Context, interval time.Duration, name string, task Task, logger *log.Logger) {
	logf := log.Printf
	if logger != nil {
		logf = logger.Printf
	}
	run := func() {
		if err := task(ctx); err != nil {
			logf("[%s] error: %v", name, err)
		}
	}

	if ctx.Err() != nil {
		return
	}
	run()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			run()
		}
	}
}
