// Package steprunner executes instructions against a browser session.
package steprunner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/metrics"
	"github.com/InNoobWeTrust/web-automator/pkg/timing"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// SettleDelay follows every instruction that completes, including no-ops.
const SettleDelay = 500 * time.Millisecond

type Executor struct {
	Logger  types.Logger
	Metrics *metrics.Recorder
	Sleep   timing.Sleeper
	// Intn returns a uniform index in [0, n).
	Intn func(n int) int
}

var _ Runner = (*Executor)(nil)

func NewExecutor(logger types.Logger, rec *metrics.Recorder) *Executor {
	return &Executor{
		Logger:  logger,
		Metrics: rec,
		Sleep:   timing.Sleep,
		Intn:    rand.IntN,
	}
}

// Execute runs instr and then waits SettleDelay. Errors that the instruction
// itself declares ignorable are consumed here and never returned.
func (e *Executor) Execute(ctx context.Context, s browser.Session, instr types.Instruction) error {
	result := metrics.ResultOK
	var err error

	switch in := instr.(type) {
	case types.Navigate:
		err = e.navigate(ctx, s, in)
	case types.Click:
		var ignored bool
		ignored, err = e.click(ctx, s, in)
		if ignored {
			result = metrics.ResultIgnored
		}
	case types.Wait:
		err = e.wait(ctx, in)
	case types.Scroll:
		err = e.scroll(ctx, s, in)
	case types.RandomClick:
		err = e.randomClick(ctx, s, in)
	default:
		return fmt.Errorf("%w %T", types.ErrUnknownInstruction, instr)
	}

	if err != nil {
		e.Metrics.Action(instr.Action(), metrics.ResultError)
		return err
	}
	e.Metrics.Action(instr.Action(), result)

	return e.Sleep(ctx, SettleDelay)
}
