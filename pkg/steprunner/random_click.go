package steprunner

import (
	"context"
	"fmt"
	"strings"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// randomClick clicks one random candidate, or keeps clicking until none are
// left when Exhaustive is set. A failed lookup ends the loop without error.
func (e *Executor) randomClick(ctx context.Context, s browser.Session, r types.RandomClick) error {
	loc := browser.Locator{Selector: r.Selector, By: r.By}
	e.Logger.Info().
		Str("action", r.Action()).
		Str("selector", loc.String()).
		Bool("exhaustive", r.Exhaustive).
		Msg("Finding random elements to click")

	clicks := 0
	for {
		els, err := s.FindAll(ctx, loc, r.LookupTimeout())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.Logger.Debug().Err(err).Int("clicks", clicks).Msg("No more elements to click")
			return nil
		}

		candidates := e.withoutExcluded(ctx, els, r.ExcludeText)
		if len(candidates) == 0 {
			e.Logger.Debug().Int("clicks", clicks).Msg("No clickable candidates left")
			return nil
		}

		pick := candidates[e.Intn(len(candidates))]
		if err := s.ExecuteScript(ctx, browser.ClickScript, pick); err != nil {
			return fmt.Errorf("clicking random %s: %w", loc, err)
		}
		e.Metrics.Click()
		clicks++

		if !r.Exhaustive {
			return nil
		}
		if err := e.pause(ctx, r.Delay, r.DelayStdev, "Waiting between clicks"); err != nil {
			return err
		}
	}
}

// withoutExcluded drops elements whose text contains any of exclude.
// Elements whose text cannot be read are kept.
func (e *Executor) withoutExcluded(ctx context.Context, els []browser.Element, exclude []string) []browser.Element {
	if len(exclude) == 0 {
		return els
	}

	kept := make([]browser.Element, 0, len(els))
	for _, el := range els {
		text, err := el.Text(ctx)
		if err != nil || !containsAny(text, exclude) {
			kept = append(kept, el)
		}
	}
	return kept
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
