package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodSession drives a single Chrome tab through go-rod.
type RodSession struct {
	browser    *rod.Browser
	page       *rod.Page
	navTimeout time.Duration
}

// NewRodSession launches a local browser, or attaches to opts.RemoteURL, and
// opens one blank tab.
func NewRodSession(ctx context.Context, opts Options) (*RodSession, error) {
	controlURL, err := rodControlURL(opts)
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser at %q: %w", controlURL, err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	if opts.Width > 0 && opts.Height > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = browser.Close()
			return nil, fmt.Errorf("setting viewport %dx%d: %w", opts.Width, opts.Height, err)
		}
	}

	return &RodSession{browser: browser, page: page, navTimeout: opts.navigationTimeout()}, nil
}

func rodControlURL(opts Options) (string, error) {
	if opts.RemoteURL != "" {
		u, err := launcher.ResolveURL(opts.RemoteURL)
		if err != nil {
			return "", fmt.Errorf("resolving remote browser URL %q: %w", opts.RemoteURL, err)
		}
		return u, nil
	}

	l := launcher.New().
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled")
	if path, found := launcher.LookPath(); found {
		l = l.Bin(path)
	}
	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launching browser: %w", err)
	}
	return u, nil
}

func (s *RodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx).Timeout(s.navTimeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigating to %q: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for %q to load: %w", url, err)
	}
	return nil
}

func (s *RodSession) FindOne(ctx context.Context, loc Locator, timeout time.Duration) (Element, error) {
	p := s.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	var el *rod.Element
	var err error
	if css, ok := loc.CSSSelector(); ok {
		el, err = p.Element(css)
	} else {
		el, err = p.ElementX(loc.Selector)
	}
	if err != nil {
		return nil, lookupError(loc, timeout, err)
	}
	return &rodElement{el: el.Context(ctx)}, nil
}

func (s *RodSession) FindAll(ctx context.Context, loc Locator, timeout time.Duration) ([]Element, error) {
	// Elements does not wait, so block on the first match before listing.
	if _, err := s.FindOne(ctx, loc, timeout); err != nil {
		return nil, err
	}

	p := s.page.Context(ctx)
	var els rod.Elements
	var err error
	if css, ok := loc.CSSSelector(); ok {
		els, err = p.Elements(css)
	} else {
		els, err = p.ElementsX(loc.Selector)
	}
	if err != nil {
		return nil, lookupError(loc, timeout, err)
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

func (s *RodSession) ExecuteScript(ctx context.Context, script string, args ...any) error {
	jsArgs := make([]any, 0, len(args))
	for _, a := range args {
		if el, ok := a.(*rodElement); ok {
			jsArgs = append(jsArgs, el.el.Object)
			continue
		}
		jsArgs = append(jsArgs, a)
	}

	if _, err := s.page.Context(ctx).Evaluate(rod.Eval(script, jsArgs...)); err != nil {
		return fmt.Errorf("%w: %v", types.ErrScriptExecutionFailed, err)
	}
	return nil
}

func (s *RodSession) Cookies(ctx context.Context) ([]Cookie, error) {
	raw, err := s.page.Context(ctx).Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("reading cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			Expiry:   int64(c.Expires),
		})
	}
	return cookies, nil
}

func (s *RodSession) AddCookie(ctx context.Context, c Cookie) error {
	param := &proto.NetworkCookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if c.Expiry > 0 {
		param.Expires = proto.TimeSinceEpoch(c.Expiry)
	}

	if err := s.page.Context(ctx).SetCookies([]*proto.NetworkCookieParam{param}); err != nil {
		return fmt.Errorf("setting cookie %q: %w", c.Name, err)
	}
	return nil
}

func (s *RodSession) Close() error {
	_ = s.page.Close()
	return s.browser.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}
