package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/browser"
	"github.com/InNoobWeTrust/web-automator/pkg/browser/browsertest"
	"github.com/InNoobWeTrust/web-automator/pkg/cookies"
	"github.com/InNoobWeTrust/web-automator/pkg/core"
	"github.com/InNoobWeTrust/web-automator/pkg/gate"
	"github.com/InNoobWeTrust/web-automator/pkg/steprunner"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const engineConfig = `
domains:
  example.com:
    instructions: flows/example.yml
    loop_config:
      - times: 3
        from_action_num: 0
        to_action_num: 0
  critical.com:
    instructions: flows/critical.yml
  lenient.com:
    instructions: flows/lenient.yml
  banned.com:
    instructions: flows/example.yml
    skip_elements: ["div.absent", "div.banned", "div.never"]
  cookies.com:
    instructions: flows/scroll.yml
    cookie_file: cookies/domain.json
  global.com:
    instructions: flows/scroll.yml
  broken.com:
    instructions: flows/broken.yml
  nofile.com:
    instructions: flows/missing.yml
`

func newAutomator(t *testing.T, page *browsertest.Page) *core.Automator {
	t.Helper()
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yml", engineConfig)
	writeFile(t, dir, "flows/example.yml", "- action: click\n  selector: \"#a\"\n- action: scroll\n  amount: 50")
	writeFile(t, dir, "flows/critical.yml", "- action: navigate\n  url: https://down.example\n  critical: true\n- action: click\n  selector: \"#a\"")
	writeFile(t, dir, "flows/lenient.yml", "- action: navigate\n  url: https://down.example\n- action: scroll")
	writeFile(t, dir, "flows/scroll.yml", "- action: scroll")
	writeFile(t, dir, "flows/broken.yml", "- action: teleport")
	writeFile(t, dir, "cookies/domain.json", `[{"name": "sid", "value": "domain-secret", "domain": ".cookies.com"}]`)
	global := writeFile(t, dir, "cookies/global.json", `[
  {"name": "gid", "value": "global-secret", "domain": "global.com"},
  {"name": "other", "value": "x", "domain": "cookies.com"}
]`)

	return &core.Automator{
		Logger:  nopLogger(),
		Session: page,
		Gate:    gate.New(nopLogger(), 10*time.Millisecond),
		Cookies: cookies.NewSyncer(nopLogger()),
		Runners: func(logger types.Logger) steprunner.Runner {
			e := steprunner.NewExecutor(logger, nil)
			e.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
			return e
		},
		ConfigPath: cfgPath,
		CookieFile: global,
	}
}

func TestRunTarget_CompletesWithLoops(t *testing.T) {
	page := browsertest.NewPage().Add(browser.CSS("#a"), &browsertest.Element{ID: "a"})
	a := newAutomator(t, page)

	out, err := a.RunTarget(context.Background(), "https://example.com/feed")
	require.NoError(t, err)

	assert.Equal(t, core.StatusDone, out.Status)
	assert.Equal(t, "example.com", out.Domain)
	assert.Equal(t, 4, out.Executed)
	assert.Equal(t, []string{"a", "a", "a"}, page.Clicks)
	assert.Equal(t, []string{"https://example.com/feed"}, page.Navigations)
	assert.Equal(t, browser.ScrollScript, page.ScriptSources()[3])
}

func TestRunTarget_CriticalNavigationAborts(t *testing.T) {
	page := browsertest.NewPage().
		Add(browser.CSS("#a"), &browsertest.Element{ID: "a"}).
		FailNavigate("https://down.example", errors.New("net::ERR_NAME_NOT_RESOLVED"))
	a := newAutomator(t, page)

	out, err := a.RunTarget(context.Background(), "https://critical.com/")
	require.Error(t, err)

	assert.ErrorIs(t, err, types.ErrCriticalNavigationFailed)
	assert.Equal(t, core.StatusAborted, out.Status)
	assert.Equal(t, 1, out.Executed)
	assert.Empty(t, page.Lookups, "click after the failed navigation must not run")
	assert.Empty(t, page.Clicks)
}

func TestRunTarget_NonCriticalNavigationContinues(t *testing.T) {
	page := browsertest.NewPage().FailNavigate("https://down.example", errors.New("timeout"))
	a := newAutomator(t, page)

	out, err := a.RunTarget(context.Background(), "https://lenient.com/")
	require.NoError(t, err)

	assert.Equal(t, core.StatusDone, out.Status)
	assert.Equal(t, 2, out.Executed)
	assert.Equal(t, []string{browser.ScrollScript}, page.ScriptSources())
}

func TestRunTarget_SkipElementPresent(t *testing.T) {
	page := browsertest.NewPage().
		Add(browser.CSS("div.banned"), &browsertest.Element{ID: "ban"}).
		Add(browser.CSS("#a"), &browsertest.Element{ID: "a"})
	a := newAutomator(t, page)

	out, err := a.RunTarget(context.Background(), "https://banned.com/")
	require.NoError(t, err)

	assert.Equal(t, core.StatusSkipped, out.Status)
	assert.ErrorIs(t, out.Reason, types.ErrPreconditionBlocked)
	assert.Zero(t, out.Executed)
	assert.Empty(t, page.Navigations)
	assert.Empty(t, page.Clicks)

	require.Len(t, page.Lookups, 2, "probing stops at the first present selector")
	assert.Equal(t, browser.CSS("div.absent"), page.Lookups[0].Locator)
	assert.Equal(t, browser.CSS("div.banned"), page.Lookups[1].Locator)
}

func TestRunTarget_Unconfigured(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"unknown domain", "https://unknown.org/"},
		{"missing instruction file", "https://nofile.com/"},
		{"unparseable url", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.NewPage()
			a := newAutomator(t, page)

			out, err := a.RunTarget(context.Background(), tt.url)
			require.NoError(t, err)
			assert.Equal(t, core.StatusSkipped, out.Status)
			assert.ErrorIs(t, out.Reason, types.ErrConfigurationMissing)
			assert.Empty(t, page.Navigations)
		})
	}
}

func TestRunTarget_Aborts(t *testing.T) {
	page := browsertest.NewPage()
	a := newAutomator(t, page)

	out, err := a.RunTarget(context.Background(), "https://broken.com/")
	assert.ErrorIs(t, err, types.ErrUnknownInstruction)
	assert.Equal(t, core.StatusAborted, out.Status)

	page = browsertest.NewPage().FailNavigate("https://global.com/", errors.New("refused"))
	a = newAutomator(t, page)
	out, err = a.RunTarget(context.Background(), "https://global.com/")
	assert.ErrorIs(t, err, types.ErrNavigationFailed)
	assert.Equal(t, core.StatusAborted, out.Status)
	assert.Zero(t, out.Executed)

	a = newAutomator(t, browsertest.NewPage())
	a.ConfigPath = "/nonexistent/config.yml"
	out, err = a.RunTarget(context.Background(), "https://example.com/")
	assert.ErrorContains(t, err, "reading config file")
	assert.Equal(t, core.StatusAborted, out.Status)
}

func TestRunTarget_CookieSync(t *testing.T) {
	t.Run("domain file overrides global", func(t *testing.T) {
		page := browsertest.NewPage()
		a := newAutomator(t, page)

		out, err := a.RunTarget(context.Background(), "https://cookies.com/home")
		require.NoError(t, err)
		assert.Equal(t, core.StatusDone, out.Status)

		got, err := page.Cookies(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "sid", got[0].Name)
		assert.Equal(t, []string{
			"https://cookies.com/home",
			"https://cookies.com",
			"https://cookies.com/home",
		}, page.Navigations)
	})

	t.Run("global file", func(t *testing.T) {
		page := browsertest.NewPage()
		a := newAutomator(t, page)

		_, err := a.RunTarget(context.Background(), "https://global.com/")
		require.NoError(t, err)

		got, err := page.Cookies(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "gid", got[0].Name)
	})

	t.Run("failure aborts", func(t *testing.T) {
		page := browsertest.NewPage().FailCookies(errors.New("devtools gone"))
		a := newAutomator(t, page)

		out, err := a.RunTarget(context.Background(), "https://global.com/")
		assert.ErrorIs(t, err, types.ErrCookieSyncFailed)
		assert.Equal(t, core.StatusAborted, out.Status)
		assert.Empty(t, page.Scripts)
	})
}

func TestRunBatch_ContinuesPastFailures(t *testing.T) {
	page := browsertest.NewPage().
		Add(browser.CSS("#a"), &browsertest.Element{ID: "a"}).
		FailNavigate("https://down.example", errors.New("unreachable"))
	a := newAutomator(t, page)

	report := a.RunBatch(context.Background(), []string{
		"https://critical.com/",
		"https://unknown.org/",
		"https://example.com/",
	})

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.ErrorIs(t, report.Errors, types.ErrCriticalNavigationFailed)
	assert.Equal(t, []string{"a", "a", "a"}, page.Clicks)
}

func TestRunBatch_RandomOrder(t *testing.T) {
	page := browsertest.NewPage()
	a := newAutomator(t, page)
	a.RandomOrder = true
	a.Shuffle = func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}

	targets := []string{"https://global.com/a", "https://lenient.com/b"}
	report := a.RunBatch(context.Background(), targets)
	require.NoError(t, report.Errors)

	assert.Equal(t, "https://lenient.com/b", page.Navigations[0])
	assert.Equal(t, []string{"https://global.com/a", "https://lenient.com/b"}, targets, "caller's slice is untouched")
}

func TestRunBatch_Cancelled(t *testing.T) {
	page := browsertest.NewPage()
	a := newAutomator(t, page)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := a.RunBatch(ctx, []string{"https://example.com/", "https://global.com/"})
	assert.Zero(t, report.Processed)
	assert.ErrorIs(t, report.Errors, context.Canceled)
	assert.Empty(t, page.Navigations)
}
