package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/InNoobWeTrust/web-automator/pkg/cookies"
)

// ValidateConfigStructure checks fields at the config level: every domain is
// a bare host and names an instruction file.
func ValidateConfigStructure(cfg *Config) error {
	if len(cfg.Domains) == 0 {
		return fmt.Errorf("config defines no 'domains'")
	}

	for _, name := range cfg.DomainNames() {
		if name == "" || strings.ContainsAny(name, "/: ") {
			return fmt.Errorf("domain %q must be a bare host name", name)
		}
		if cfg.Domains[name].Instructions == "" {
			return fmt.Errorf("domain %q is missing 'instructions'", name)
		}
	}
	return nil
}

// ValidateLoops reports loop ranges that the planner would ignore, cut short,
// or resolve ambiguously for a list of count instructions.
func ValidateLoops(loops []LoopRange, count int) []error {
	var errs []error

	for i, r := range loops {
		if r.From > r.To {
			errs = append(errs, fmt.Errorf("loop %d: from_action_num %d is after to_action_num %d", i, r.From, r.To))
			continue
		}
		if r.From < 0 || r.To >= count {
			errs = append(errs, fmt.Errorf("loop %d: range [%d, %d] is out of bounds for %d instructions", i, r.From, r.To, count))
		}
	}

	for i := range loops {
		a := loops[i]
		if a.From > a.To {
			continue
		}
		for j := i + 1; j < len(loops); j++ {
			b := loops[j]
			if b.From > b.To {
				continue
			}
			switch {
			case a.From == b.From:
				errs = append(errs, fmt.Errorf("loops %d and %d both start at %d; only loop %d is used", i, j, a.From, i))
			case a.From <= b.To && b.From <= a.To:
				errs = append(errs, fmt.Errorf("loops %d [%d, %d] and %d [%d, %d] overlap", i, a.From, a.To, j, b.From, b.To))
			}
		}
	}

	return errs
}

// Issue is one lint finding for a domain.
type Issue struct {
	Domain string
	Err    error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %v", i.Domain, i.Err)
}

func (i Issue) Unwrap() error { return i.Err }

// Lint checks every configured domain: the instruction file exists and
// parses, loop ranges are sound, and the cookie file parses.
func Lint(cfg *Config, vars VarContext) []Issue {
	var issues []Issue

	for _, name := range cfg.DomainNames() {
		binding, err := cfg.Resolve(name)
		if err != nil {
			issues = append(issues, Issue{Domain: name, Err: err})
			continue
		}

		instrs, err := LoadInstructionsFile(binding.InstructionFile, vars)
		if err != nil {
			issues = append(issues, Issue{Domain: name, Err: err})
		} else {
			for _, loopErr := range ValidateLoops(binding.Loops, len(instrs)) {
				issues = append(issues, Issue{Domain: name, Err: loopErr})
			}
		}

		if binding.CookieFile != "" {
			if _, err := cookies.Load(binding.CookieFile); err != nil {
				issues = append(issues, Issue{Domain: name, Err: err})
			}
		}
	}

	return issues
}

// JoinIssues folds lint findings into one error, nil when there are none.
func JoinIssues(issues []Issue) error {
	errs := make([]error, 0, len(issues))
	for _, i := range issues {
		errs = append(errs, i)
	}
	return errors.Join(errs...)
}
