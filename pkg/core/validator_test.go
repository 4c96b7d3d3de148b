package core_test

import (
	"testing"

	"github.com/InNoobWeTrust/web-automator/pkg/core"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLoops(t *testing.T) {
	tests := []struct {
		name  string
		loops []core.LoopRange
		count int
		want  []string
	}{
		{
			name:  "sound ranges",
			loops: []core.LoopRange{{Times: 2, From: 0, To: 1}, {Times: 0, From: 3, To: 4}},
			count: 5,
		},
		{
			name:  "reversed",
			loops: []core.LoopRange{{Times: 1, From: 3, To: 1}},
			count: 5,
			want:  []string{"is after to_action_num"},
		},
		{
			name:  "out of bounds",
			loops: []core.LoopRange{{Times: 1, From: 2, To: 7}},
			count: 5,
			want:  []string{"out of bounds for 5 instructions"},
		},
		{
			name:  "duplicate start",
			loops: []core.LoopRange{{Times: 1, From: 1, To: 2}, {Times: 3, From: 1, To: 3}},
			count: 5,
			want:  []string{"both start at 1; only loop 0 is used"},
		},
		{
			name:  "overlap",
			loops: []core.LoopRange{{Times: 1, From: 0, To: 2}, {Times: 1, From: 2, To: 4}},
			count: 5,
			want:  []string{"overlap"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := core.ValidateLoops(tt.loops, tt.count)
			require.Len(t, errs, len(tt.want))
			for i, msg := range tt.want {
				assert.Contains(t, errs[i].Error(), msg)
			}
		})
	}
}

func TestLint(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yml", "- action: scroll\n- action: wait\n  seconds: 1")
	writeFile(t, dir, "broken.yml", "- action: teleport")
	writeFile(t, dir, "cookies.json", `[{"name": "sid", "value": "1", "domain": "good.com"}]`)
	writeFile(t, dir, "bad-cookies.json", `{}`)

	cfg := &core.Config{
		Dir: dir,
		Domains: map[string]core.DomainConfig{
			"good.com": {Instructions: "good.yml", CookieFile: "cookies.json"},
			"loops.com": {
				Instructions: "good.yml",
				LoopConfig:   []core.LoopRange{{Times: 1, From: 0, To: 5}},
				CookieFile:   "bad-cookies.json",
			},
			"broken.com":  {Instructions: "broken.yml"},
			"missing.com": {Instructions: "nope.yml"},
		},
	}

	issues := core.Lint(cfg, nil)
	require.Len(t, issues, 4)

	byDomain := map[string][]string{}
	for _, i := range issues {
		byDomain[i.Domain] = append(byDomain[i.Domain], i.Error())
	}
	assert.NotContains(t, byDomain, "good.com")
	assert.Len(t, byDomain["loops.com"], 2)
	assert.Len(t, byDomain["broken.com"], 1)
	assert.Len(t, byDomain["missing.com"], 1)

	joined := core.JoinIssues(issues)
	assert.ErrorIs(t, joined, types.ErrUnknownInstruction)
	assert.ErrorIs(t, joined, types.ErrConfigurationMissing)
	assert.NoError(t, core.JoinIssues(nil))
}
