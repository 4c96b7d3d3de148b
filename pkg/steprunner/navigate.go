package steprunner

import (
	"context"
	"fmt"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

func (e *Executor) navigate(ctx context.Context, s browser.Session, n types.Navigate) error {
	e.Logger.Info().
		Str("action", n.Action()).
		Str("url", n.URL).
		Bool("critical", n.Critical).
		Msg("Navigating")

	err := s.Navigate(ctx, n.URL)
	if err == nil {
		return nil
	}

	if n.Critical {
		e.Logger.Error().Err(err).Str("url", n.URL).Msg("Critical navigation failed")
		return fmt.Errorf("%w: %q: %w", types.ErrCriticalNavigationFailed, n.URL, err)
	}
	return fmt.Errorf("%w: %q: %w", types.ErrNavigationFailed, n.URL, err)
}
