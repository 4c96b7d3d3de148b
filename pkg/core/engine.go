package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/metrics"
	"github.com/InNoobWeTrust/web-automator/pkg/planner"
	"github.com/InNoobWeTrust/web-automator/pkg/steprunner"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// Status is the terminal state of one domain run.
type Status int

const (
	StatusDone Status = iota
	StatusSkipped
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return metrics.OutcomeDone
	case StatusSkipped:
		return metrics.OutcomeSkipped
	case StatusAborted:
		return metrics.OutcomeAborted
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome describes how a domain run ended.
type Outcome struct {
	URL    string
	Domain string
	Status Status
	// Reason is set for skipped runs and wraps types.ErrConfigurationMissing
	// or types.ErrPreconditionBlocked.
	Reason error
	// Executed counts the instructions dispatched to the runner.
	Executed int
}

// RunReport summarizes a batch.
type RunReport struct {
	Processed int
	Completed int
	Skipped   int
	Failed    int
	// Errors joins the fatal error of every aborted target.
	Errors error
}

// Automator drives one browser session through the configured instructions
// of each target URL.
type Automator struct {
	Logger  types.Logger
	Session browser.Session
	Gate    PreconditionGate
	Cookies CookieSyncer
	Runners steprunner.RunnerFactory
	Metrics *metrics.Recorder

	// ConfigPath is re-read on every domain run.
	ConfigPath string
	Vars       VarContext
	// CookieFile is used for domains that do not configure their own.
	CookieFile string

	RandomOrder bool
	// Shuffle permutes a batch in place when RandomOrder is set.
	Shuffle func(n int, swap func(i, j int))
}

// RunTarget takes targetURL through resolve, gate, navigate, cookie sync and
// execution. The error is non-nil exactly when the outcome is StatusAborted.
func (a *Automator) RunTarget(ctx context.Context, targetURL string) (Outcome, error) {
	out := Outcome{URL: targetURL}

	domain, err := DomainFromURL(targetURL)
	if err != nil {
		return a.skip(out, fmt.Errorf("%w: %w", types.ErrConfigurationMissing, err))
	}
	out.Domain = domain
	logger := a.Logger.With().Str("domain", domain).Str("url", targetURL).Logger()

	cfg, err := LoadConfigFromFile(a.ConfigPath)
	if err != nil {
		return a.abort(logger, out, err)
	}
	binding, err := cfg.Resolve(domain)
	if err != nil {
		if types.IsSkip(err) {
			logger.Info().Err(err).Msg("Skipping target: not configured")
			return a.skip(out, err)
		}
		return a.abort(logger, out, err)
	}

	if len(binding.SkipElements) > 0 && a.Gate.ShouldSkip(ctx, a.Session, binding.SkipElements) {
		logger.Info().Msg("Skipping target due to presence of skip elements")
		return a.skip(out, fmt.Errorf("%w: skip element present on %q", types.ErrPreconditionBlocked, targetURL))
	}
	if err := ctx.Err(); err != nil {
		return a.abort(logger, out, err)
	}

	if err := a.Session.Navigate(ctx, targetURL); err != nil {
		return a.abort(logger, out, fmt.Errorf("%w: %q: %w", types.ErrNavigationFailed, targetURL, err))
	}

	cookieFile := binding.CookieFile
	if cookieFile == "" {
		cookieFile = a.CookieFile
	}
	if cookieFile != "" {
		injected, err := a.Cookies.Sync(ctx, a.Session, targetURL, cookieFile)
		if err != nil {
			return a.abort(logger, out, err)
		}
		if injected {
			a.Metrics.CookiesSynced()
		}
	}

	instrs, err := LoadInstructionsFile(binding.InstructionFile, a.Vars)
	if err != nil {
		return a.abort(logger, out, err)
	}
	for _, loopErr := range ValidateLoops(binding.Loops, len(instrs)) {
		logger.Warn().Err(loopErr).Msg("Questionable loop_config")
	}

	order := planner.Plan(len(instrs), binding.Loops)
	logger.Info().
		Int("instructions", len(instrs)).
		Int("planned", len(order)).
		Msg("Executing instructions")

	runner := a.Runners(logger)
	for step, idx := range order {
		if err := ctx.Err(); err != nil {
			return a.abort(logger, out, err)
		}

		instr := instrs[idx]
		err := runner.Execute(ctx, a.Session, instr)
		out.Executed++
		if err == nil {
			continue
		}

		if errors.Is(err, types.ErrNavigationFailed) && ctx.Err() == nil {
			logger.Warn().Err(err).
				Str("action", instr.Action()).
				Int("index", idx).
				Msg("Non-critical navigation failed, continuing")
			continue
		}

		logger.Error().Err(err).
			Str("action", instr.Action()).
			Int("index", idx).
			Int("step", step).
			Msg("Domain run aborted")
		out.Status = StatusAborted
		a.Metrics.Target(out.Status.String())
		return out, fmt.Errorf("domain %q: instruction %d (%s): %w", domain, idx, instr.Action(), err)
	}

	logger.Info().Int("executed", out.Executed).Msg("Domain run completed")
	out.Status = StatusDone
	a.Metrics.Target(out.Status.String())
	return out, nil
}

func (a *Automator) skip(out Outcome, reason error) (Outcome, error) {
	out.Status = StatusSkipped
	out.Reason = reason
	a.Metrics.Target(out.Status.String())
	return out, nil
}

func (a *Automator) abort(logger types.Logger, out Outcome, err error) (Outcome, error) {
	logger.Error().Err(err).Msg("Domain run aborted")
	out.Status = StatusAborted
	a.Metrics.Target(out.Status.String())
	return out, fmt.Errorf("domain %q: %w", out.Domain, err)
}

// RunBatch runs every target in turn, shuffled once up front when
// RandomOrder is set. A failed target is recorded and the batch moves on;
// cancelling ctx stops it.
func (a *Automator) RunBatch(ctx context.Context, targets []string) RunReport {
	order := append([]string(nil), targets...)
	if a.RandomOrder {
		shuffle := a.Shuffle
		if shuffle == nil {
			shuffle = rand.Shuffle
		}
		shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	var report RunReport
	var errs []error
	for _, target := range order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		out, err := a.RunTarget(ctx, target)
		report.Processed++
		switch out.Status {
		case StatusDone:
			report.Completed++
		case StatusSkipped:
			report.Skipped++
			a.Logger.Info().Str("url", target).Err(out.Reason).Msg("Target skipped")
		case StatusAborted:
			report.Failed++
			errs = append(errs, err)
		}
	}

	report.Errors = errors.Join(errs...)
	a.Logger.Info().
		Int("processed", report.Processed).
		Int("completed", report.Completed).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Batch finished")
	return report
}
