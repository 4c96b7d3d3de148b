package steprunner

import (
	"context"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// Runner executes a single instruction against the session.
type Runner interface {
	Execute(ctx context.Context, s browser.Session, instr types.Instruction) error
}
