package steprunner

import (
	"context"
	"fmt"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

func (e *Executor) scroll(ctx context.Context, s browser.Session, sc types.Scroll) error {
	amount := sc.Pixels()
	e.Logger.Info().
		Str("action", sc.Action()).
		Int("amount", amount).
		Msg("Scrolling")

	if err := s.ExecuteScript(ctx, browser.ScrollScript, amount); err != nil {
		return fmt.Errorf("scrolling by %d: %w", amount, err)
	}
	return nil
}
