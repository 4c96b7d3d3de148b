package cli

import (
	"fmt"

	"github.com/InNoobWeTrust/web-automator/pkg/core"
	"github.com/InNoobWeTrust/web-automator/pkg/log/sinks"
	"github.com/joho/godotenv"
)

type LintCmd struct {
	Config  string `arg:"" help:"The per-domain YAML configuration file." type:"existingfile"`
	Varfile string `help:"The YAML varfile for input variables." default:"vars.yml"`
	Verbose bool   `short:"v" help:"Show debug output on the console."`
}

func (l *LintCmd) Run() error {
	dotenvErr := godotenv.Load()

	logRouter, cmdLogger := newLogger(sinks.NewConsoleSink(consoleLevel(l.Verbose)))
	defer logRouter.Close()

	cmdLogger.Info().Msgf("Validating %s using %s", l.Config, l.Varfile)
	if dotenvErr != nil {
		cmdLogger.Debug().Err(dotenvErr).Msg("No .env file loaded")
	}

	cfg, err := core.LoadConfigFromFile(l.Config)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to load config %s", l.Config)
		return fmt.Errorf("loading config %q: %w", l.Config, err)
	}

	vars, err := loadVarfile(l.Varfile, cmdLogger)
	if err != nil {
		return err
	}

	issues := core.Lint(cfg, vars)
	for _, issue := range issues {
		cmdLogger.Error().Err(issue.Err).Str("domain", issue.Domain).Msg("Configuration issue")
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d issue(s) in %q: %w", len(issues), l.Config, core.JoinIssues(issues))
	}

	cmdLogger.Info().Int("domains", len(cfg.Domains)).Msg("Successfully validated configuration ✅")
	return nil
}
