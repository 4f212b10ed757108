package injector

import (
	"github.com/gdamore/tcell/v2"
	"github.com/google/wire"

	"github.com/zeusync/spic/internal/config"
	"github.com/zeusync/spic/internal/core/engine"
	"github.com/zeusync/spic/internal/core/observability/log"
)

// ConfigPath is the config file handed to config.Load; empty means defaults
// plus environment.
type ConfigPath string

var EngineSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideEngine,
)

func ProvideConfig(path ConfigPath) (config.Config, error) {
	return config.Load(string(path))
}

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	l, err := log.New(log.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Sync() }, nil
}

func ProvideEngine(cfg config.Config, l *log.Logger, screen tcell.Screen) (*engine.Engine, func(), error) {
	e, err := engine.New(cfg, l, engine.WithScreen(screen))
	if err != nil {
		return nil, nil, err
	}
	return e, e.Shutdown, nil
}
