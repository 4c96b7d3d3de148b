package core_test

import (
	"path/filepath"
	"testing"

	"github.com/InNoobWeTrust/web-automator/pkg/core"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.example.com/path?q=1", "www.example.com", false},
		{"http://localhost:8080/", "localhost", false},
		{"https://EXAMPLE.com", "EXAMPLE.com", false},
		{"/relative/path", "", true},
		{"example.com", "", true},
		{"://broken", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := core.DomainFromURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "flows/example.yml", "- action: scroll")

	cfg := &core.Config{
		Dir: dir,
		Domains: map[string]core.DomainConfig{
			"example.com": {
				Instructions: "flows/example.yml",
				SkipElements: []string{"div.banned"},
				LoopConfig:   []core.LoopRange{{Times: 2, From: 0, To: 0}},
				CookieFile:   "cookies/example.json",
			},
			"missing.com": {Instructions: "flows/missing.yml"},
			"dir.com":     {Instructions: "flows"},
		},
	}

	b, err := cfg.Resolve("example.com")
	require.NoError(t, err)
	assert.Equal(t, &core.DomainBinding{
		Domain:          "example.com",
		InstructionFile: filepath.Join(dir, "flows/example.yml"),
		SkipElements:    []string{"div.banned"},
		Loops:           []core.LoopRange{{Times: 2, From: 0, To: 0}},
		CookieFile:      filepath.Join(dir, "cookies/example.json"),
	}, b)

	for _, domain := range []string{"unknown.com", "missing.com", "dir.com"} {
		_, err := cfg.Resolve(domain)
		assert.ErrorIs(t, err, types.ErrConfigurationMissing, domain)
		assert.True(t, types.IsSkip(err))
	}
}

func TestConfig_CookieFiles(t *testing.T) {
	cfg := &core.Config{
		Dir: "/etc/automator",
		Domains: map[string]core.DomainConfig{
			"a.com": {Instructions: "a.yml", CookieFile: "shared.json"},
			"b.com": {Instructions: "b.yml", CookieFile: "shared.json"},
			"c.com": {Instructions: "c.yml", CookieFile: "/abs/c.json"},
			"d.com": {Instructions: "d.yml"},
		},
	}
	assert.Equal(t, []string{"/etc/automator/shared.json", "/abs/c.json"}, cfg.CookieFiles())
}

func TestResolvePathFromConfig(t *testing.T) {
	assert.Equal(t, "/abs/file.yml", core.ResolvePathFromConfig("/cfg", "/abs/file.yml"))
	assert.Equal(t, filepath.Join("/cfg", "rel/file.yml"), core.ResolvePathFromConfig("/cfg", "rel/file.yml"))
	assert.Equal(t, "", core.ResolvePathFromConfig("/cfg", ""))
}
