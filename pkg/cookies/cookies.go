// Package cookies keeps the browser session logged in by injecting cookies
// from an exported cookie file when the session is missing them.
package cookies

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// Cookie is one entry of a cookie file.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"http_only,omitempty"`
	// Expiry is seconds since epoch; zero means a session cookie.
	Expiry int64 `json:"expiry,omitempty"`
}

// UnmarshalJSON also accepts the httpOnly and expirationDate keys written by
// browser cookie exporters.
func (c *Cookie) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name           string   `json:"name"`
		Value          string   `json:"value"`
		Domain         string   `json:"domain"`
		Path           string   `json:"path"`
		Secure         bool     `json:"secure"`
		HTTPOnly       *bool    `json:"http_only"`
		HTTPOnlyCamel  *bool    `json:"httpOnly"`
		Expiry         *float64 `json:"expiry"`
		ExpirationDate *float64 `json:"expirationDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Cookie{
		Name:   raw.Name,
		Value:  raw.Value,
		Domain: raw.Domain,
		Path:   raw.Path,
		Secure: raw.Secure,
	}
	switch {
	case raw.HTTPOnly != nil:
		c.HTTPOnly = *raw.HTTPOnly
	case raw.HTTPOnlyCamel != nil:
		c.HTTPOnly = *raw.HTTPOnlyCamel
	}
	switch {
	case raw.Expiry != nil:
		c.Expiry = int64(*raw.Expiry)
	case raw.ExpirationDate != nil:
		c.Expiry = int64(*raw.ExpirationDate)
	}
	return nil
}

func (c Cookie) browserCookie() browser.Cookie {
	return browser.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		Expiry:   c.Expiry,
	}
}

// Load reads a JSON array of cookies.
func Load(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookie file %q: %w", path, err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parsing cookie file %q: %w", path, err)
	}
	for i, c := range cookies {
		if c.Name == "" {
			return nil, fmt.Errorf("cookie %d in %q has no name", i, path)
		}
	}
	return cookies, nil
}

// MatchesDomain reports whether a cookie domain and a host are related: either
// one is a suffix of the other. An empty side never matches.
func MatchesDomain(cookieDomain, host string) bool {
	if cookieDomain == "" || host == "" {
		return false
	}
	return strings.HasSuffix(host, cookieDomain) || strings.HasSuffix(cookieDomain, host)
}

// ForHost returns the cookies whose domain matches host.
func ForHost(cookies []Cookie, host string) []Cookie {
	var out []Cookie
	for _, c := range cookies {
		if MatchesDomain(c.Domain, host) {
			out = append(out, c)
		}
	}
	return out
}

type Syncer struct {
	Logger types.Logger
}

func NewSyncer(logger types.Logger) *Syncer {
	return &Syncer{Logger: logger}
}

// Sync makes sure the session holds every cookie of cookieFile that applies
// to targetURL's host. When some are missing it opens the site root, adds
// them all, and navigates back to targetURL. It reports whether cookies were
// injected. Errors wrap types.ErrCookieSyncFailed.
func (s *Syncer) Sync(ctx context.Context, sess browser.Session, targetURL, cookieFile string) (bool, error) {
	injected, err := s.sync(ctx, sess, targetURL, cookieFile)
	if err != nil {
		return false, fmt.Errorf("%w: %w", types.ErrCookieSyncFailed, err)
	}
	return injected, nil
}

func (s *Syncer) sync(ctx context.Context, sess browser.Session, targetURL, cookieFile string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("parsing target url %q: %w", targetURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return false, fmt.Errorf("target url %q has no host", targetURL)
	}

	all, err := Load(cookieFile)
	if err != nil {
		return false, err
	}
	expected := ForHost(all, host)
	if len(expected) == 0 {
		s.Logger.Info().Str("host", host).Msg("No cookies expected for domain")
		return false, nil
	}

	current, err := sess.Cookies(ctx)
	if err != nil {
		return false, err
	}
	missing := firstMissing(expected, current, host)
	if missing == "" {
		s.Logger.Info().Str("host", host).Int("cookies", len(expected)).Msg("Session has all expected cookies")
		return false, nil
	}
	s.Logger.Warn().Str("host", host).Str("cookie", missing).Msg("Missing cookie, injecting from file")

	root := fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	if err := sess.Navigate(ctx, root); err != nil {
		return false, err
	}
	for _, c := range expected {
		if err := sess.AddCookie(ctx, c.browserCookie()); err != nil {
			return false, err
		}
	}
	if err := sess.Navigate(ctx, targetURL); err != nil {
		return false, err
	}

	s.Logger.Info().Str("host", host).Int("cookies", len(expected)).Msg("Injected cookies")
	return true, nil
}

// firstMissing returns the name of the first expected cookie that the session
// does not hold, or "" when all are present.
func firstMissing(expected []Cookie, current []browser.Cookie, host string) string {
	for _, want := range expected {
		found := false
		for _, have := range current {
			if have.Name == want.Name && MatchesDomain(have.Domain, host) {
				found = true
				break
			}
		}
		if !found {
			return want.Name
		}
	}
	return ""
}
