// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// Element is a fake node. Clicking it through browser.ClickScript records
// the click on the owning Page.
type Element struct {
	ID      string
	Label   string
	TextErr error
}

func (e *Element) Text(context.Context) (string, error) {
	if e.TextErr != nil {
		return "", e.TextErr
	}
	return e.Label, nil
}

// Script is one recorded ExecuteScript call.
type Script struct {
	Source string
	Args   []any
}

// Lookup is one recorded FindOne or FindAll call.
type Lookup struct {
	Locator browser.Locator
	Timeout time.Duration
	All     bool
}

// Page is a scripted browser.Session. Lookups never block: a locator with no
// registered elements fails immediately with types.ErrElementLookupTimedOut.
type Page struct {
	mu sync.Mutex

	elements  map[browser.Locator][]*Element
	findErrs  map[browser.Locator]error
	navErrs   map[string]error
	scriptErr error
	cookieErr error

	// RemoveOnClick drops a clicked element from every locator it is
	// registered under, so repeated lookups shrink.
	RemoveOnClick bool

	Navigations []string
	Lookups     []Lookup
	Scripts     []Script
	Clicks      []string
	cookies     []browser.Cookie
	Closed      bool
}

var _ browser.Session = (*Page)(nil)

func NewPage() *Page {
	return &Page{
		elements: make(map[browser.Locator][]*Element),
		findErrs: make(map[browser.Locator]error),
		navErrs:  make(map[string]error),
	}
}

// Add registers elements under loc. An empty By is stored as css.
func (p *Page) Add(loc browser.Locator, els ...*Element) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	loc = normalize(loc)
	p.elements[loc] = append(p.elements[loc], els...)
	return p
}

// FailFind makes every lookup of loc return err.
func (p *Page) FailFind(loc browser.Locator, err error) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.findErrs[normalize(loc)] = err
	return p
}

// FailNavigate makes navigation to url return err.
func (p *Page) FailNavigate(url string, err error) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navErrs[url] = err
	return p
}

// FailScripts makes every ExecuteScript call return err.
func (p *Page) FailScripts(err error) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scriptErr = err
	return p
}

// FailCookies makes Cookies and AddCookie return err.
func (p *Page) FailCookies(err error) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cookieErr = err
	return p
}

// SetCookies replaces the cookies the session currently holds.
func (p *Page) SetCookies(cookies ...browser.Cookie) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cookies = append([]browser.Cookie(nil), cookies...)
	return p
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Navigations = append(p.Navigations, url)
	return p.navErrs[url]
}

func (p *Page) FindOne(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	els, err := p.find(ctx, loc, timeout, false)
	if err != nil {
		return nil, err
	}
	return els[0], nil
}

func (p *Page) FindAll(ctx context.Context, loc browser.Locator, timeout time.Duration) ([]browser.Element, error) {
	els, err := p.find(ctx, loc, timeout, true)
	if err != nil {
		return nil, err
	}
	out := make([]browser.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}

func (p *Page) find(ctx context.Context, loc browser.Locator, timeout time.Duration, all bool) ([]*Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc = normalize(loc)
	p.Lookups = append(p.Lookups, Lookup{Locator: loc, Timeout: timeout, All: all})

	if err := p.findErrs[loc]; err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrElementLookupFailed, loc, err)
	}
	els := p.elements[loc]
	if len(els) == 0 {
		return nil, fmt.Errorf("%w after %s: %s", types.ErrElementLookupTimedOut, timeout, loc)
	}
	return slices.Clone(els), nil
}

func (p *Page) ExecuteScript(ctx context.Context, script string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	p.Scripts = append(p.Scripts, Script{Source: script, Args: args})
	if p.scriptErr != nil {
		return fmt.Errorf("%w: %v", types.ErrScriptExecutionFailed, p.scriptErr)
	}

	if script == browser.ClickScript && len(args) == 1 {
		if el, ok := args[0].(*Element); ok {
			p.Clicks = append(p.Clicks, el.ID)
			if p.RemoveOnClick {
				p.remove(el)
			}
		}
	}
	return nil
}

func (p *Page) remove(target *Element) {
	for loc, els := range p.elements {
		p.elements[loc] = slices.DeleteFunc(els, func(e *Element) bool { return e == target })
	}
}

func (p *Page) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cookieErr != nil {
		return nil, p.cookieErr
	}
	return slices.Clone(p.cookies), nil
}

func (p *Page) AddCookie(ctx context.Context, c browser.Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cookieErr != nil {
		return p.cookieErr
	}
	p.cookies = append(p.cookies, c)
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// ScriptSources returns the source of every executed script, in order.
func (p *Page) ScriptSources() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Scripts))
	for _, s := range p.Scripts {
		out = append(out, s.Source)
	}
	return out
}

func normalize(loc browser.Locator) browser.Locator {
	loc.By = loc.By.OrDefault()
	return loc
}
