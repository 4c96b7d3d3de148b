// Package browser defines the remote session handle the automator drives and
// its DevTools-protocol backends.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// Scripts are JavaScript function expressions. Element arguments are passed
// by remote reference, other arguments as JSON values.
const (
	ClickScript  = `(el) => el.click()`
	ScrollScript = `(amount) => window.scrollBy(0, amount)`
)

// Locator is a selector plus the strategy used to resolve it.
type Locator struct {
	Selector string
	By       types.By
}

func CSS(selector string) Locator { return Locator{Selector: selector, By: types.ByCSS} }

var idEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// CSSSelector returns the locator as a css selector. An id locator becomes an
// attribute selector so ids that are not valid css identifiers still match.
// It returns false for xpath locators.
func (l Locator) CSSSelector() (string, bool) {
	switch l.By.OrDefault() {
	case types.ByID:
		return fmt.Sprintf(`[id="%s"]`, idEscaper.Replace(l.Selector)), true
	case types.ByXPath:
		return "", false
	default:
		return l.Selector, true
	}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By.OrDefault(), l.Selector)
}

// Element is a handle on a node of the current page.
type Element interface {
	Text(ctx context.Context) (string, error)
}

// Cookie mirrors the WebDriver cookie shape.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	// Expiry is seconds since epoch; zero means a session cookie.
	Expiry int64
}

// Session is the single long-lived browser session. Lookups return errors
// wrapping types.ErrElementLookupTimedOut or types.ErrElementLookupFailed,
// scripts errors wrapping types.ErrScriptExecutionFailed.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// FindOne waits up to timeout for an element matching loc.
	FindOne(ctx context.Context, loc Locator, timeout time.Duration) (Element, error)
	// FindAll waits up to timeout for at least one match and returns all of them.
	FindAll(ctx context.Context, loc Locator, timeout time.Duration) ([]Element, error)
	ExecuteScript(ctx context.Context, script string, args ...any) error
	Cookies(ctx context.Context) ([]Cookie, error)
	AddCookie(ctx context.Context, c Cookie) error
	Close() error
}

// Options configures how a session is started.
type Options struct {
	// RemoteURL attaches to a running browser (DevTools http or ws URL)
	// instead of launching one.
	RemoteURL         string
	Headless          bool
	Width             int
	Height            int
	NavigationTimeout time.Duration
}

func (o Options) navigationTimeout() time.Duration {
	if o.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return o.NavigationTimeout
}

// Driver names accepted by New.
const (
	DriverRod      = "rod"
	DriverChromedp = "chromedp"
)

// New starts a session with the named driver.
func New(ctx context.Context, driver string, opts Options) (Session, error) {
	switch driver {
	case "", DriverRod:
		return NewRodSession(ctx, opts)
	case DriverChromedp:
		return NewChromedpSession(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported driver %q (use %s or %s)", driver, DriverRod, DriverChromedp)
	}
}

func lookupError(loc Locator, timeout time.Duration, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w after %s: %s", types.ErrElementLookupTimedOut, timeout, loc)
	}
	return fmt.Errorf("%w: %s: %v", types.ErrElementLookupFailed, loc, err)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
