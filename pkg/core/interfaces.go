package core

import (
	"context"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
)

// PreconditionGate decides whether the current page must be skipped.
type PreconditionGate interface {
	ShouldSkip(ctx context.Context, s browser.Session, selectors []string) bool
}

// CookieSyncer makes sure the session holds the cookies of a cookie file
// for a target URL, reporting whether any were injected.
type CookieSyncer interface {
	Sync(ctx context.Context, s browser.Session, targetURL, cookieFile string) (bool, error)
}
