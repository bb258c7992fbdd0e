package scheduler

import (
	"context"
	"sync"
	"time"
)

// Task runs fn on every tick until stopped.
type Task struct {
	name   string
	fn     func(ctx context.Context)
	ticker Ticker
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start creates the ticker before returning, so a tick source driven by a test
// clock is already armed when Start returns.
func Start(parent context.Context, clock Clock, name string, every time.Duration, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		name:   name,
		fn:     fn,
		ticker: clock.NewTicker(every),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.loop(ctx)
	return t
}

func (t *Task) Name() string { return t.name }

func (t *Task) loop(ctx context.Context) {
	defer close(t.done)
	defer t.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.ticker.C():
			// Both cases may be ready at once; cancellation wins.
			if ctx.Err() != nil {
				return
			}
			t.fn(ctx)
		}
	}
}

// Stop cancels the task and blocks until its goroutine has exited. When Stop
// returns no invocation of fn is running and none will start.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the task goroutine has exited.
func (t *Task) Done() <-chan struct{} { return t.done }
