package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-reach/internal/algo"
	"github.com/elektrokombinacija/mapf-reach/internal/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, core.SumOfCosts, cfg.ObjectiveValue())
	assert.True(t, cfg.Budget.Auto)
	assert.Equal(t, algo.Options{Mode: algo.Exact}, cfg.Options())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	src := `
version: 1
objective: makespan
budget: 7
mode: window
goal_blocking: true
workers: 3
log:
  level: debug
  json: true
cache:
  dir: /tmp/mapf-cache
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.Makespan, cfg.ObjectiveValue())
	assert.Equal(t, Budget{Value: 7}, cfg.Budget)
	assert.True(t, cfg.Reach, "unset fields keep defaults")
	assert.Equal(t, algo.Options{Workers: 3, Mode: algo.Window, GoalBlocking: true}, cfg.Options())
	assert.Equal(t, slog.LevelDebug, cfg.Logging().Level)
	assert.True(t, cfg.Logging().JSON)
	assert.Equal(t, "/tmp/mapf-cache", cfg.Cache.Dir)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{name: "missing version", src: "objective: soc\n", msg: "unsupported config version: 0"},
		{name: "future version", src: "version: 2\n", msg: "unsupported config version: 2"},
		{name: "bad objective", src: "version: 1\nobjective: fastest\n", msg: `unknown objective "fastest"`},
		{name: "bad mode", src: "version: 1\nmode: fuzzy\n", msg: `unknown mode "fuzzy"`},
		{name: "bad budget", src: "version: 1\nbudget: lots\n", msg: "budget must be auto or an integer"},
		{name: "negative budget", src: "version: 1\nbudget: -2\n", msg: "invalid budget"},
		{name: "bad level", src: "version: 1\nlog:\n  level: loud\n", msg: `unknown log level "loud"`},
		{name: "negative workers", src: "version: 1\nworkers: -1\n", msg: "workers must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseBudget(t *testing.T) {
	b, err := ParseBudget("AUTO")
	require.NoError(t, err)
	assert.True(t, b.Auto)

	b, err = ParseBudget("4")
	require.NoError(t, err)
	assert.Equal(t, Budget{Value: 4}, b)
	assert.Equal(t, "4", b.String())

	_, err = ParseBudget("-1")
	assert.ErrorIs(t, err, core.ErrInvalidBudget)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Budget = Budget{Value: 2}
	cfg.Objective = "makespan"

	out, err := cfg.Marshal()
	require.NoError(t, err)
	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
