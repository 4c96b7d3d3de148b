// Package security masks secret values before they reach log output.
package security

import (
	"slices"
	"strings"
)

const mask = "********"

// Redactor replaces every occurrence of its secrets with a fixed mask.
type Redactor struct {
	Secrets []string
}

// NewRedactor keeps the non-empty, distinct secrets, longest first so a
// secret is masked before any of its substrings.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	r.Add(secrets...)
	return r
}

// Add registers more secrets.
func (r *Redactor) Add(secrets ...string) {
	for _, s := range secrets {
		if s == "" || slices.Contains(r.Secrets, s) {
			continue
		}
		r.Secrets = append(r.Secrets, s)
	}
	slices.SortStableFunc(r.Secrets, func(a, b string) int {
		return len(b) - len(a)
	})
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	for _, secret := range r.Secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, mask)
	}
	return s
}
