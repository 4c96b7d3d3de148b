package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const textScript = `function() { return this.innerText; }`

// ChromedpSession drives a single Chrome tab through chromedp.
type ChromedpSession struct {
	// tab is the chromedp target context; every call derives from it.
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
}

// NewChromedpSession launches a local browser, or attaches to opts.RemoteURL,
// and allocates one tab.
func NewChromedpSession(ctx context.Context, opts Options) (*ChromedpSession, error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
		)
		if opts.Width > 0 && opts.Height > 0 {
			execOpts = append(execOpts, chromedp.WindowSize(opts.Width, opts.Height))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	tab, cancelTab := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("starting chromedp tab: %w", err)
	}

	return &ChromedpSession{
		tab:         tab,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		navTimeout:  opts.navigationTimeout(),
	}, nil
}

// noTimeout leaves a call bounded only by the caller's ctx.
const noTimeout time.Duration = -1

// run executes actions on the tab, bounded by timeout and by the caller's
// ctx. A zero timeout is already expired.
func (s *ChromedpSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	c, cancel := boundedContext(s.tab, ctx, timeout)
	defer cancel()
	return chromedp.Run(c, actions...)
}

// boundedContext derives from parent, gets a deadline unless timeout is
// noTimeout, and is cancelled together with ctx.
func boundedContext(parent, ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var c context.Context
	var cancel context.CancelFunc
	if timeout == noTimeout {
		c, cancel = context.WithCancel(parent)
	} else {
		c, cancel = context.WithTimeout(parent, max(timeout, 0))
	}
	stop := context.AfterFunc(ctx, cancel)
	return c, func() {
		stop()
		cancel()
	}
}

func (s *ChromedpSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.navTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %q: %w", url, err)
	}
	return nil
}

func (s *ChromedpSession) FindOne(ctx context.Context, loc Locator, timeout time.Duration) (Element, error) {
	nodes, err := s.nodes(ctx, loc, timeout, chromedp.ByQuery)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s: no match", types.ErrElementLookupFailed, loc)
	}
	return &cdpElement{session: s, node: nodes[0]}, nil
}

func (s *ChromedpSession) FindAll(ctx context.Context, loc Locator, timeout time.Duration) ([]Element, error) {
	nodes, err := s.nodes(ctx, loc, timeout, chromedp.ByQueryAll)
	if err != nil {
		return nil, err
	}

	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &cdpElement{session: s, node: n})
	}
	return out, nil
}

func (s *ChromedpSession) nodes(ctx context.Context, loc Locator, timeout time.Duration, cssMode chromedp.QueryOption) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	sel, ok := loc.CSSSelector()
	query := chromedp.Nodes(sel, &nodes, cssMode)
	if !ok {
		query = chromedp.Nodes(loc.Selector, &nodes, chromedp.BySearch)
	}

	if err := s.run(ctx, timeout, query); err != nil {
		return nil, lookupError(loc, timeout, err)
	}
	return nodes, nil
}

func (s *ChromedpSession) ExecuteScript(ctx context.Context, script string, args ...any) error {
	err := s.run(ctx, noTimeout, chromedp.ActionFunc(func(c context.Context) error {
		global, exc, err := runtime.Evaluate("globalThis").Do(c)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("resolving global object: %s", exc.Text)
		}

		callArgs := make([]*runtime.CallArgument, 0, len(args))
		for _, a := range args {
			if el, ok := a.(*cdpElement); ok {
				obj, err := el.resolve(c)
				if err != nil {
					return err
				}
				callArgs = append(callArgs, &runtime.CallArgument{ObjectID: obj.ObjectID})
				continue
			}
			b, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("encoding script argument: %w", err)
			}
			callArgs = append(callArgs, &runtime.CallArgument{Value: b})
		}

		_, exc, err = runtime.CallFunctionOn(script).
			WithObjectID(global.ObjectID).
			WithArguments(callArgs).
			WithAwaitPromise(true).
			Do(c)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("script threw: %s", exc.Text)
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrScriptExecutionFailed, err)
	}
	return nil
}

func (s *ChromedpSession) Cookies(ctx context.Context) ([]Cookie, error) {
	var raw []*network.Cookie
	err := s.run(ctx, noTimeout, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		raw, err = network.GetCookies().Do(c)
		return err
	}))
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

func (s *ChromedpSession) AddCookie(ctx context.Context, c Cookie) error {
	err := s.run(ctx, noTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		set := network.SetCookie(c.Name, c.Value).
			WithDomain(c.Domain).
			WithPath(c.Path).
			WithSecure(c.Secure).
			WithHTTPOnly(c.HTTPOnly)
		if c.Expiry > 0 {
			exp := cdp.TimeSinceEpoch(time.Unix(c.Expiry, 0))
			set = set.WithExpires(&exp)
		}
		return set.Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("setting cookie %q: %w", c.Name, err)
	}
	return nil
}

func (s *ChromedpSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return nil
}

type cdpElement struct {
	session *ChromedpSession
	node    *cdp.Node
}

func (e *cdpElement) resolve(ctx context.Context) (*runtime.RemoteObject, error) {
	obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving node %d: %w", e.node.NodeID, err)
	}
	return obj, nil
}

func (e *cdpElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.session.run(ctx, 0, chromedp.ActionFunc(func(c context.Context) error {
		obj, err := e.resolve(c)
		if err != nil {
			return err
		}
		res, exc, err := runtime.CallFunctionOn(textScript).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(c)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("reading text: %s", exc.Text)
		}
		return json.Unmarshal([]byte(res.Value), &text)
	}))
	return text, err
}
