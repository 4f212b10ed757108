package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/spic/internal/config"
	"github.com/zeusync/spic/internal/core/engine"
	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/internal/injector"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "spic:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML or TOML config file")
	frames := flag.Int64("frames", 0, "stop after this many frames, overriding the config")
	headless := flag.Bool("headless", false, "run without a terminal screen")
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profileMode)
	}

	if *frames > 0 {
		if err := os.Setenv(config.EnvPrefix+"ENGINE_MAX_FRAMES", strconv.FormatInt(*frames, 10)); err != nil {
			return err
		}
	}

	var screen tcell.Screen
	finish := func() {}
	if !*headless {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open screen: %w", err)
		}
		if err := s.Init(); err != nil {
			return fmt.Errorf("init screen: %w", err)
		}
		screen = s
		finish = sync.OnceFunc(s.Fini)
		defer finish()
	}

	e, cleanup, err := injector.InitializeEngine(injector.ConfigPath(*configPath), screen)
	if err != nil {
		return err
	}
	defer cleanup()

	level := levelScene(e.Config().Scripts.Dir, e.Log())
	if _, err := e.TransitionToScene(level, introDuration, nil); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		// Finalizing the screen unblocks pollInput.
		defer finish()
		return e.Run(ctx)
	})
	if screen != nil {
		g.Go(func() error {
			pollInput(screen, e, cancel)
			return nil
		})
	}

	err = g.Wait()
	e.Log().Info("session ended", log.Int64("frames", e.Frame()))
	return err
}

// pollInput forwards key presses to the loop until the screen is finalized.
func pollInput(screen tcell.Screen, e *engine.Engine, quit context.CancelFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		switch {
		case key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC || key.Rune() == 'q':
			quit()
		case key.Rune() == 'f':
			e.Post(func(e *engine.Engine) { e.ToggleFPS() })
		case key.Rune() == 'c':
			e.Post(func(e *engine.Engine) { e.ToggleColliders() })
		case key.Key() == tcell.KeyLeft:
			e.Post(func(e *engine.Engine) { movePlayer(e.Registry(), -1, 0) })
		case key.Key() == tcell.KeyRight:
			e.Post(func(e *engine.Engine) { movePlayer(e.Registry(), 1, 0) })
		case key.Key() == tcell.KeyUp:
			e.Post(func(e *engine.Engine) { movePlayer(e.Registry(), 0, -1) })
		case key.Key() == tcell.KeyDown:
			e.Post(func(e *engine.Engine) { movePlayer(e.Registry(), 0, 1) })
		}
	}
}
