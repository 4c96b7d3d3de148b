package cli

import (
	"fmt"
	"os"

	"github.com/InNoobWeTrust/web-automator/pkg/core"
	"github.com/InNoobWeTrust/web-automator/pkg/log"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/rs/zerolog"
)

func consoleLevel(verbose bool) types.Level {
	if verbose {
		return types.DebugLevel
	}
	return types.InfoLevel
}

// newLogger builds a timestamped logger writing through a router with the
// given sinks. Sinks apply their own level filters. Closing the router
// flushes and closes every sink.
func newLogger(sinkList ...log.Sink) (*log.Router, types.Logger) {
	router := log.NewRouter(sinkList...)
	return router, log.New(router, zerolog.DebugLevel)
}

// loadVarfile resolves the varfile at path. A missing varfile is not an
// error: instructions may rely on {{ env.* }} alone.
func loadVarfile(path string, logger types.Logger) (core.VarContext, error) {
	if path == "" {
		return core.VarContext{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn().Str("varfile", path).Msg("Varfile not found, proceeding without variables")
		return core.VarContext{}, nil
	}

	vars, err := core.ResolveVarfile(path, logger)
	if err != nil {
		return nil, fmt.Errorf("resolving varfile %q: %w", path, err)
	}
	logger.Info().Str("varfile", path).Int("vars", len(vars)).Msg("Loaded varfile")
	return vars, nil
}
