package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/spic/internal/core/observability/log"
)

// EnvPrefix prefixes every environment override, e.g. SPIC_ENGINE_TARGET_FPS.
const EnvPrefix = "SPIC_"

var ErrUnsupportedFormat = errors.New("unsupported config format")

type Config struct {
	Engine  EngineConfig  `yaml:"engine" toml:"engine" envPrefix:"ENGINE_"`
	Audio   AudioConfig   `yaml:"audio" toml:"audio" envPrefix:"AUDIO_"`
	Physics PhysicsConfig `yaml:"physics" toml:"physics" envPrefix:"PHYSICS_"`
	Render  RenderConfig  `yaml:"render" toml:"render" envPrefix:"RENDER_"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" envPrefix:"LOGGING_"`
	Scripts ScriptsConfig `yaml:"scripts" toml:"scripts" envPrefix:"SCRIPTS_"`
}

type EngineConfig struct {
	Title     string `yaml:"title" toml:"title" env:"TITLE"`
	TargetFPS int    `yaml:"target_fps" toml:"target_fps" env:"TARGET_FPS"`
	// MaxFrames stops Run after that many frames; 0 runs until cancelled.
	MaxFrames int64 `yaml:"max_frames" toml:"max_frames" env:"MAX_FRAMES"`
}

type AudioConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled" env:"ENABLED"`
	SampleRate int  `yaml:"sample_rate" toml:"sample_rate" env:"SAMPLE_RATE"`
	Quality    int  `yaml:"quality" toml:"quality" env:"QUALITY"`
	// Drain consumes the mix every frame; set it when no output device
	// pulls samples.
	Drain bool `yaml:"drain" toml:"drain" env:"DRAIN"`
}

type PhysicsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled" env:"ENABLED"`
}

type RenderConfig struct {
	Enabled       bool    `yaml:"enabled" toml:"enabled" env:"ENABLED"`
	CellSize      float64 `yaml:"cell_size" toml:"cell_size" env:"CELL_SIZE"`
	ShowFPS       bool    `yaml:"show_fps" toml:"show_fps" env:"SHOW_FPS"`
	ShowColliders bool    `yaml:"show_colliders" toml:"show_colliders" env:"SHOW_COLLIDERS"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"LEVEL"`
	Format string `yaml:"format" toml:"format" env:"FORMAT"` // "json" or "console"
}

type ScriptsConfig struct {
	Dir string `yaml:"dir" toml:"dir" env:"DIR"`
}

func Default() Config {
	return Config{
		Engine: EngineConfig{
			Title:     "spic",
			TargetFPS: 60,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Quality:    4,
			Drain:      true,
		},
		Physics: PhysicsConfig{Enabled: true},
		Render: RenderConfig{
			Enabled:  true,
			CellSize: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripts: ScriptsConfig{Dir: "scripts"},
	}
}

// Load reads path on top of Default, then applies environment overrides.
// An empty path skips the file. The format follows the extension: .yaml,
// .yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode yaml config %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("decode toml config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("decode toml config %s: unknown key %s", path, undecoded[0])
		}
	default:
		return fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Engine.TargetFPS <= 0 {
		return fmt.Errorf("engine.target_fps must be positive, got %d", c.Engine.TargetFPS)
	}
	if c.Engine.MaxFrames < 0 {
		return fmt.Errorf("engine.max_frames must not be negative, got %d", c.Engine.MaxFrames)
	}
	if c.Audio.Enabled {
		if c.Audio.SampleRate <= 0 {
			return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
		}
		if c.Audio.Quality < 1 || c.Audio.Quality > 64 {
			return fmt.Errorf("audio.quality must be in [1, 64], got %d", c.Audio.Quality)
		}
	}
	if c.Render.CellSize <= 0 || math.IsNaN(c.Render.CellSize) || math.IsInf(c.Render.CellSize, 0) {
		return fmt.Errorf("render.cell_size must be a positive number, got %v", c.Render.CellSize)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
