package steprunner

import (
	"context"
	"fmt"

	"github.com/InNoobWeTrust/web-automator/pkg/timing"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

func (e *Executor) wait(ctx context.Context, w types.Wait) error {
	seconds, err := timing.Delay(w.Seconds, w.Stdev)
	if err != nil {
		return fmt.Errorf("sampling wait time: %w", err)
	}

	e.Logger.Info().
		Str("action", w.Action()).
		Float64("seconds", seconds).
		Msg("Waiting")
	return e.sleep(ctx, seconds)
}
