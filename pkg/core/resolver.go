package core

import (
	"fmt"
	"net/url"
	"os"
	"slices"

	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// DomainFromURL returns the host component of rawURL, without port.
func DomainFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return host, nil
}

// Resolve returns the binding for domain. It fails with
// types.ErrConfigurationMissing when the domain has no entry or its
// instruction file does not exist.
func (c *Config) Resolve(domain string) (*DomainBinding, error) {
	dc, ok := c.Domains[domain]
	if !ok {
		return nil, fmt.Errorf("%w: no entry for domain %q", types.ErrConfigurationMissing, domain)
	}

	instructions := ResolvePathFromConfig(c.Dir, dc.Instructions)
	info, err := os.Stat(instructions)
	if err != nil {
		return nil, fmt.Errorf("%w: instruction file %q for domain %q: %v", types.ErrConfigurationMissing, instructions, domain, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: instruction path %q for domain %q is a directory", types.ErrConfigurationMissing, instructions, domain)
	}

	return &DomainBinding{
		Domain:          domain,
		InstructionFile: instructions,
		SkipElements:    dc.SkipElements,
		Loops:           dc.LoopConfig,
		CookieFile:      ResolvePathFromConfig(c.Dir, dc.CookieFile),
	}, nil
}

// DomainNames returns the configured domains in sorted order.
func (c *Config) DomainNames() []string {
	names := make([]string, 0, len(c.Domains))
	for name := range c.Domains {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CookieFiles returns the distinct absolute cookie file paths of all domains.
func (c *Config) CookieFiles() []string {
	var files []string
	for _, name := range c.DomainNames() {
		p := ResolvePathFromConfig(c.Dir, c.Domains[name].CookieFile)
		if p != "" && !slices.Contains(files, p) {
			files = append(files, p)
		}
	}
	return files
}
