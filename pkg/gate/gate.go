// Package gate decides whether a page must be skipped because one of its
// configured skip selectors is present.
package gate

import (
	"context"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

const DefaultProbeTimeout = time.Second

type Gate struct {
	Logger types.Logger
	// ProbeTimeout bounds each selector lookup.
	ProbeTimeout time.Duration
}

func New(logger types.Logger, probeTimeout time.Duration) *Gate {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &Gate{Logger: logger, ProbeTimeout: probeTimeout}
}

// ShouldSkip probes selectors in order and returns true at the first one
// present on the page. Lookup errors count as absent.
func (g *Gate) ShouldSkip(ctx context.Context, s browser.Session, selectors []string) bool {
	for _, sel := range selectors {
		if ctx.Err() != nil {
			return false
		}
		if _, err := s.FindOne(ctx, browser.CSS(sel), g.ProbeTimeout); err != nil {
			g.Logger.Debug().Err(err).Str("selector", sel).Msg("Skip element not present")
			continue
		}
		g.Logger.Warn().Str("selector", sel).Msg("Found skip element")
		return true
	}
	return false
}
