package types

import "errors"

// Error kinds produced while running a domain. Callers wrap them with
// fmt.Errorf("...: %w", ...) and test them with errors.Is.
var (
	// ErrConfigurationMissing means the domain has no config entry or its
	// instruction file does not exist. The target is skipped.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrPreconditionBlocked means a skip selector was found on the page.
	// The target is skipped.
	ErrPreconditionBlocked = errors.New("precondition blocked")

	ErrInvalidDistributionParameters = errors.New("invalid normal distribution parameters")
	ErrElementLookupFailed           = errors.New("element lookup failed")
	ErrElementLookupTimedOut         = errors.New("timed out waiting for element")
	ErrScriptExecutionFailed         = errors.New("script execution failed")
	ErrNavigationFailed              = errors.New("navigation failed")
	ErrCriticalNavigationFailed      = errors.New("critical navigation failed")
	ErrCookieSyncFailed              = errors.New("cookie sync failed")
	ErrUnknownInstruction            = errors.New("unknown instruction")
)

// IsSkip reports whether err is one of the non-fatal kinds that end a domain
// run early without counting as a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrConfigurationMissing) || errors.Is(err, ErrPreconditionBlocked)
}

// IsLookupError reports whether err came from a failed or timed out element
// lookup.
func IsLookupError(err error) bool {
	return errors.Is(err, ErrElementLookupFailed) || errors.Is(err, ErrElementLookupTimedOut)
}
