package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bombpot/internal/game"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 6, cfg.Game.Seats)
	assert.False(t, cfg.Inspector.Enabled)
}

func TestParseOverridesOnlyWhatIsSet(t *testing.T) {
	src := `
game {
  flop_one = "Th8h6c"
  seats    = 4
}

solver {
  evaluator         = "table"
  progress_interval = "250ms"
}
`
	cfg, err := Parse([]byte(src), "test.hcl")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "Th8h6c", cfg.Game.FlopOne)
	assert.Equal(t, def.Game.FlopTwo, cfg.Game.FlopTwo)
	assert.Equal(t, 4, cfg.Game.Seats)
	assert.Equal(t, def.Game.Stack, cfg.Game.Stack)
	assert.Equal(t, "table", cfg.Solver.Evaluator)
	assert.Equal(t, 250*time.Millisecond, cfg.Solver.ProgressInterval)
	assert.Equal(t, def.Inspector, cfg.Inspector)
	require.NoError(t, cfg.Validate())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `game {`},
		{"unknown block", `table "main" {}`},
		{"unknown attribute", `game { blinds = 2 }`},
		{"wrong type", `game { seats = "six" }`},
		{"bad duration", `inspector { refresh = "soon" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short flop", func(c *Config) { c.Game.FlopOne = "Ah7d" }},
		{"one seat", func(c *Config) { c.Game.Seats = 1 }},
		{"ante above stack", func(c *Config) { c.Game.Ante = 500 }},
		{"evaluator", func(c *Config) { c.Solver.Evaluator = "magic" }},
		{"negative interval", func(c *Config) { c.Solver.ProgressInterval = -time.Second }},
		{"inspector address", func(c *Config) {
			c.Inspector.Enabled = true
			c.Inspector.Address = ""
		}},
		{"inspector refresh", func(c *Config) {
			c.Inspector.Enabled = true
			c.Inspector.Refresh = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), game.ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bombpot.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
game {
  seats = 3
  ante  = 2
}
inspector {
  enabled = true
}
`), 0o600))

	t.Setenv("BOMBPOT_ANTE", "7.5")
	t.Setenv("BOMBPOT_INSPECTOR_REFRESH", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Game.Seats)
	assert.Equal(t, 7.5, cfg.Game.Ante)
	assert.True(t, cfg.Inspector.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Inspector.Refresh)
	require.NoError(t, cfg.Validate())
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "bombpot.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Default().SolverConfig(), cfg.SolverConfig())
}

func TestEnvUsage(t *testing.T) {
	usage, err := EnvUsage()
	require.NoError(t, err)
	assert.Contains(t, usage, "BOMBPOT_FLOP_ONE")
	assert.Contains(t, usage, "BOMBPOT_INSPECTOR_REFRESH")
}
