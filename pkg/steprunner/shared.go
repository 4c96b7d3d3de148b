package steprunner

import (
	"context"

	"github.com/InNoobWeTrust/web-automator/pkg/timing"
)

// pause sleeps for the optional delay, jittered when stdev is set. A nil
// delay is a no-op.
func (e *Executor) pause(ctx context.Context, delay, stdev *float64, what string) error {
	if delay == nil {
		return nil
	}

	seconds, err := timing.Delay(*delay, stdev)
	if err != nil {
		return err
	}

	e.Logger.Debug().Float64("seconds", seconds).Msg(what)
	return e.sleep(ctx, seconds)
}

func (e *Executor) sleep(ctx context.Context, seconds float64) error {
	e.Metrics.Slept(seconds)
	return e.Sleep(ctx, timing.Seconds(seconds))
}
