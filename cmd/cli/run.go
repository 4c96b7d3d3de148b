package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/cookies"
	"github.com/InNoobWeTrust/web-automator/pkg/core"
	"github.com/InNoobWeTrust/web-automator/pkg/gate"
	"github.com/InNoobWeTrust/web-automator/pkg/links"
	"github.com/InNoobWeTrust/web-automator/pkg/log/sinks"
	"github.com/InNoobWeTrust/web-automator/pkg/metrics"
	"github.com/InNoobWeTrust/web-automator/pkg/security"
	"github.com/InNoobWeTrust/web-automator/pkg/steprunner"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type RunCmd struct {
	Config string `arg:"" help:"The per-domain YAML configuration file." type:"existingfile"`

	Links string `help:"File with one target URL per line ('#' starts a comment)." xor:"target" type:"existingfile"`
	URL   string `name:"url" help:"Single target URL." xor:"target"`

	Cookies     string        `help:"JSON cookie file used for domains without their own cookie_file."`
	Driver      string        `help:"Browser driver." enum:"rod,chromedp" default:"rod"`
	Remote      string        `help:"Attach to a running browser through its DevTools URL instead of launching one."`
	Headless    bool          `help:"Launch the browser headless."`
	RandomOrder bool          `help:"Shuffle the targets once before running." default:"true" negatable:""`
	Width       int           `help:"Browser window width." default:"1024"`
	Height      int           `help:"Browser window height." default:"3840"`
	Varfile     string        `help:"The YAML varfile for input variables." default:"vars.yml"`
	LogDir      string        `help:"Directory for the JSON run log." default:".web-automator/logs"`
	MetricsFile string        `help:"Write run counters in Prometheus text format to this file."`
	GateTimeout time.Duration `help:"Lookup timeout for each skip element probe." default:"1s"`
	Verbose     bool          `short:"v" help:"Show debug output on the console."`
}

func (r *RunCmd) Run() error {
	dotenvErr := godotenv.Load()

	runID := uuid.New().String()
	fileSink, err := sinks.NewFileSink(filepath.Join(r.LogDir, fmt.Sprintf("%s.json", runID)))
	if err != nil {
		return fmt.Errorf("creating file log sink: %w", err)
	}
	logFilePath := fileSink.Path()
	logRouter, cmdLogger := newLogger(sinks.NewConsoleSink(consoleLevel(r.Verbose)), fileSink)
	defer func() {
		if err := logRouter.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during log shutdown: %v\n", err)
		}
	}()

	cmdLogger.Info().Str("run_id", runID).Str("log_file", logFilePath).Msg("Starting run")
	if dotenvErr != nil {
		cmdLogger.Warn().Err(dotenvErr).Msg("No .env file loaded, relying on existing ENV for {{ env.* }} vars")
	}

	targets, err := r.targets(cmdLogger)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		cmdLogger.Warn().Msg("No valid target URLs, nothing to do")
		return nil
	}

	cfg, err := core.LoadConfigFromFile(r.Config)
	if err != nil {
		cmdLogger.Error().Err(err).Str("config", r.Config).Msg("Failed to load config")
		return fmt.Errorf("loading config %q: %w", r.Config, err)
	}
	cmdLogger.Info().Interface("domains", cfg.DomainNames()).Msg("Loaded config")

	vars, err := loadVarfile(r.Varfile, cmdLogger)
	if err != nil {
		return err
	}

	logRouter.SetRedactor(r.redactor(cfg, vars, cmdLogger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := browser.New(ctx, r.Driver, browser.Options{
		RemoteURL: r.Remote,
		Headless:  r.Headless,
		Width:     r.Width,
		Height:    r.Height,
	})
	if err != nil {
		cmdLogger.Error().Err(err).Str("driver", r.Driver).Msg("Failed to start browser session")
		return fmt.Errorf("starting %s session: %w", r.Driver, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			cmdLogger.Warn().Err(err).Msg("Closing browser session")
		}
	}()

	rec := metrics.NewRecorder()
	automator := &core.Automator{
		Logger:      cmdLogger,
		Session:     session,
		Gate:        gate.New(cmdLogger, r.GateTimeout),
		Cookies:     cookies.NewSyncer(cmdLogger),
		Runners:     steprunner.ExecutorFactory(rec),
		Metrics:     rec,
		ConfigPath:  r.Config,
		Vars:        vars,
		CookieFile:  r.Cookies,
		RandomOrder: r.RandomOrder,
	}

	report := automator.RunBatch(ctx, targets)

	if r.MetricsFile != "" {
		if err := rec.WriteFile(r.MetricsFile); err != nil {
			cmdLogger.Warn().Err(err).Str("path", r.MetricsFile).Msg("Failed to write metrics")
		} else {
			cmdLogger.Info().Str("path", r.MetricsFile).Msg("Wrote metrics")
		}
	}

	if errors.Is(report.Errors, context.Canceled) {
		cmdLogger.Warn().Int("processed", report.Processed).Msg("Run interrupted")
		return fmt.Errorf("run interrupted after %d of %d targets: %w", report.Processed, len(targets), report.Errors)
	}
	if report.Errors != nil {
		return fmt.Errorf("%d of %d targets failed: %w", report.Failed, len(targets), report.Errors)
	}

	cmdLogger.Info().Str("log_file", logFilePath).Msg("Run completed")
	return nil
}

func (r *RunCmd) targets(logger types.Logger) ([]string, error) {
	switch {
	case r.URL != "":
		if err := links.Validate(r.URL); err != nil {
			return nil, fmt.Errorf("invalid --url: %w", err)
		}
		return []string{r.URL}, nil
	case r.Links != "":
		parsed, err := links.ParseLinksFile(r.Links, logger)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(parsed))
		for _, l := range parsed {
			out = append(out, l.URL)
		}
		logger.Info().Str("links", r.Links).Int("targets", len(out)).Msg("Loaded links file")
		return out, nil
	default:
		return nil, errors.New("one of --links or --url is required")
	}
}

// redactor masks sensitive varfile values and every cookie value the run may
// inject.
func (r *RunCmd) redactor(cfg *core.Config, vars core.VarContext, logger types.Logger) *security.Redactor {
	red := security.NewRedactor(vars.Secrets()...)

	files := cfg.CookieFiles()
	if r.Cookies != "" {
		files = append(files, r.Cookies)
	}
	for _, path := range files {
		loaded, err := cookies.Load(path)
		if err != nil {
			logger.Warn().Err(err).Str("cookie_file", path).Msg("Cookie file unreadable, values will not be masked")
			continue
		}
		values := make([]string, 0, len(loaded))
		for _, c := range loaded {
			values = append(values, c.Value)
		}
		red.Add(values...)
	}
	return red
}
