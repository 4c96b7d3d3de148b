package steprunner

import (
	"context"
	"fmt"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// click reports ignored=true when a lookup failure was swallowed because of
// ignore_errors.
func (e *Executor) click(ctx context.Context, s browser.Session, c types.Click) (ignored bool, err error) {
	loc := browser.Locator{Selector: c.Selector, By: c.By}
	e.Logger.Info().
		Str("action", c.Action()).
		Str("selector", loc.String()).
		Msg("Clicking element")

	el, err := s.FindOne(ctx, loc, c.LookupTimeout())
	if err != nil {
		if c.IgnoreErrors && types.IsLookupError(err) {
			e.Logger.Info().Err(err).Str("selector", loc.String()).Msg("Click ignored")
			return true, nil
		}
		return false, fmt.Errorf("finding %s: %w", loc, err)
	}

	if err := s.ExecuteScript(ctx, browser.ClickScript, el); err != nil {
		return false, fmt.Errorf("clicking %s: %w", loc, err)
	}
	e.Metrics.Click()

	return false, e.pause(ctx, c.Delay, c.DelayStdev, "Waiting after click")
}
