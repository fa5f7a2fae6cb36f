package attempt

import (
	"context"
	"errors"
	"time"
)

// Run drives the countdown from ticks until the attempt leaves InProgress or
// ctx ends. The tick that exhausts the countdown triggers the automatic
// submission; nothing is read from ticks afterwards.
func (a *Attempt) Run(ctx context.Context, ticks <-chan time.Time) error {
	done := a.Done()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			if a.Snapshot().State != TimeExpired {
				return nil
			}
			_, err := a.SubmitExpired(ctx)
			if errors.Is(err, ErrInvalidTransition) {
				return nil
			}
			return err
		case <-ticks:
			if a.Tick() {
				_, err := a.SubmitExpired(ctx)
				return err
			}
		}
	}
}

// RunCountdown runs the countdown on a one second wall-clock ticker.
func (a *Attempt) RunCountdown(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	return a.Run(ctx, ticker.C)
}
