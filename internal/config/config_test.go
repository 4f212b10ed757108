package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "spic.yaml", `
engine:
  title: demo
  target_fps: 30
  max_frames: 120
audio:
  enabled: false
render:
  cell_size: 2
  show_fps: true
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "demo", cfg.Engine.Title)
	require.Equal(t, 30, cfg.Engine.TargetFPS)
	require.EqualValues(t, 120, cfg.Engine.MaxFrames)
	require.False(t, cfg.Audio.Enabled)
	require.Equal(t, 44100, cfg.Audio.SampleRate, "unset keys keep their defaults")
	require.Equal(t, 2.0, cfg.Render.CellSize)
	require.True(t, cfg.Render.ShowFPS)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "spic.toml", `
[engine]
target_fps = 24

[physics]
enabled = false

[scripts]
dir = "lua"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 24, cfg.Engine.TargetFPS)
	require.False(t, cfg.Physics.Enabled)
	require.Equal(t, "lua", cfg.Scripts.Dir)
}

func TestUnknownKeysAreRejected(t *testing.T) {
	_, err := Load(write(t, "bad.yaml", "engine:\n  fps: 10\n"))
	require.Error(t, err)

	_, err = Load(write(t, "bad.toml", "[engine]\nfps = 10\n"))
	require.ErrorContains(t, err, "unknown key")
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := Load(write(t, "spic.json", "{}"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEnvOverridesFile(t *testing.T) {
	path := write(t, "spic.yaml", "engine:\n  target_fps: 30\n")
	t.Setenv("SPIC_ENGINE_TARGET_FPS", "90")
	t.Setenv("SPIC_RENDER_SHOW_COLLIDERS", "true")
	t.Setenv("SPIC_LOGGING_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 90, cfg.Engine.TargetFPS)
	require.True(t, cfg.Render.ShowColliders)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"fps":        func(c *Config) { c.Engine.TargetFPS = 0 },
		"max frames": func(c *Config) { c.Engine.MaxFrames = -1 },
		"rate":       func(c *Config) { c.Audio.SampleRate = 0 },
		"quality":    func(c *Config) { c.Audio.Quality = 65 },
		"cell size":  func(c *Config) { c.Render.CellSize = 0 },
		"level":      func(c *Config) { c.Logging.Level = "loud" },
		"format":     func(c *Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Audio.Enabled = false
	cfg.Audio.SampleRate = 0
	require.NoError(t, cfg.Validate(), "audio settings are ignored when disabled")
}
