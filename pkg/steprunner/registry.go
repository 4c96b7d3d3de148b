package steprunner

import (
	"github.com/InNoobWeTrust/web-automator/pkg/metrics"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
)

// RunnerFactory builds a Runner that logs through logger. The orchestrator
// calls it once per domain run with a logger scoped to that run.
type RunnerFactory func(logger types.Logger) Runner

// ExecutorFactory returns a RunnerFactory whose executors share rec.
func ExecutorFactory(rec *metrics.Recorder) RunnerFactory {
	return func(logger types.Logger) Runner {
		return NewExecutor(logger, rec)
	}
}
