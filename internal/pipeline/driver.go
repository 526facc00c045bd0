package pipeline

import (
	"context"
	"time"
)

// Task is a unit of work advanced one step per tick.
type Task interface {
	Update(ctx context.Context) error
	Done() bool
}

// Driver calls a task's Update on every tick.
type Driver struct {
	Tick time.Duration // 0 steps without pausing
}

// Drive ticks t until it is done or ctx is cancelled. Cancelling detaches
// the task between steps; it is not updated again and keeps its state.
func (d Driver) Drive(ctx context.Context, t Task) error {
	if d.Tick <= 0 {
		for !t.Done() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := t.Update(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	ticker := time.NewTicker(d.Tick)
	defer ticker.Stop()

	for !t.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.Update(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
