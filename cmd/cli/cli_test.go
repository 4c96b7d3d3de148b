package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/InNoobWeTrust/web-automator/pkg/core"
	"github.com/InNoobWeTrust/web-automator/pkg/log"
	"github.com/InNoobWeTrust/web-automator/pkg/log/sinks"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() types.Logger { return log.NewZerologAdapter(zerolog.Nop()) }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCmd_Targets(t *testing.T) {
	dir := t.TempDir()
	linksFile := writeFile(t, dir, "links.txt", "# feeds\nhttps://a.com/x  # first\n\nnot-a-url\nhttps://b.com/\n")

	got, err := (&RunCmd{Links: linksFile}).targets(nopLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com/x", "https://b.com/"}, got)

	got, err = (&RunCmd{URL: "https://c.com/"}).targets(nopLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://c.com/"}, got)

	_, err = (&RunCmd{URL: "c.com"}).targets(nopLogger())
	assert.ErrorContains(t, err, "invalid --url")

	_, err = (&RunCmd{}).targets(nopLogger())
	assert.ErrorContains(t, err, "--links or --url")
}

func TestRunCmd_Redactor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "domain.json", `[{"name": "sid", "value": "domain-cookie", "domain": "a.com"}]`)
	global := writeFile(t, dir, "global.json", `[{"name": "gid", "value": "global-cookie", "domain": "b.com"}]`)

	cfg := &core.Config{
		Dir: dir,
		Domains: map[string]core.DomainConfig{
			"a.com": {Instructions: "a.yml", CookieFile: "domain.json"},
			"b.com": {Instructions: "b.yml", CookieFile: "missing.json"},
		},
	}
	vars := core.VarContext{"user_password": "hunter2", "section": "news"}

	red := (&RunCmd{Cookies: global}).redactor(cfg, vars, nopLogger())
	assert.Equal(t,
		"******** ******** ******** news",
		red.Redact("hunter2 domain-cookie global-cookie news"))
}

func TestLintCmd_Run(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.yml", "- action: scroll")
	good := writeFile(t, dir, "good.yml", "domains:\n  a.com:\n    instructions: ok.yml\n")
	bad := writeFile(t, dir, "bad.yml", "domains:\n  a.com:\n    instructions: nope.yml\n")

	assert.NoError(t, (&LintCmd{Config: good}).Run())

	err := (&LintCmd{Config: bad}).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfigurationMissing)
}

func TestNewLogger_WritesDebugToFileSink(t *testing.T) {
	fileSink, err := sinks.NewFileSink(filepath.Join(t.TempDir(), "logs", "run.json"))
	require.NoError(t, err)

	router, logger := newLogger(fileSink)
	logger.Debug().Str("domain", "a.com").Msg("checking skip elements")
	require.NoError(t, router.Close())

	data, err := os.ReadFile(fileSink.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"checking skip elements"`)
	assert.Contains(t, string(data), `"domain":"a.com"`)
	assert.Contains(t, string(data), `"level":"debug"`)
}
