package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/spic/internal/config"
	"github.com/zeusync/spic/internal/core/events"
	"github.com/zeusync/spic/internal/core/events/bus"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/internal/core/render"
	"github.com/zeusync/spic/internal/core/scene"
	"github.com/zeusync/spic/internal/core/systems"
	"github.com/zeusync/spic/internal/core/systems/animation"
	"github.com/zeusync/spic/internal/core/systems/audio"
	"github.com/zeusync/spic/internal/core/systems/behaviour"
	"github.com/zeusync/spic/internal/core/systems/physics"
)

var (
	ErrClosed  = errors.New("engine is shut down")
	ErrRunning = errors.New("engine is already running")
)

// fpsSmoothing is the weight of the newest frame in the fps estimate.
const fpsSmoothing = 0.1

type Option func(*Engine)

// WithScreen enables the renderer on s. Without a screen the engine runs
// headless whatever the render config says.
func WithScreen(s tcell.Screen) Option {
	return func(e *Engine) { e.screen = s }
}

// WithAudioLoader replaces the wav loader of the audio manager.
func WithAudioLoader(l audio.Loader) Option {
	return func(e *Engine) { e.loader = l }
}

// Engine owns one session: the registry, the bus, the scene stack and the
// systems that run on the top scene every frame.
//
// Everything except Post must be called from the goroutine running the loop.
type Engine struct {
	cfg config.Config
	log log.Log

	registry *models.Registry
	bus      *bus.Bus
	scenes   *scene.Stack
	runner   *systems.Runner

	physics  *physics.Manager
	audio    *audio.Manager
	renderer *render.Renderer
	screen   tcell.Screen
	loader   audio.Loader

	inbox    chan func(*Engine)
	pending  []func() error
	stepping bool
	running  bool
	closed   bool
	stop     context.CancelFunc

	frame int64
	fps   float64
}

func New(cfg config.Config, l log.Log, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if l == nil {
		l = log.Nop()
	}

	e := &Engine{
		cfg:   cfg,
		log:   l.Named("engine"),
		inbox: make(chan func(*Engine), 64),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.registry = models.NewRegistry(models.WithRegistryLogger(l))
	e.bus = bus.New(bus.WithLogger(l))
	if l.GetLevel() == log.LevelDebug {
		e.bus.AddObserver(bus.LogObserver{Log: l.Named("bus")})
	}
	e.registry.OnDestroyed(func(g *models.GameObject) {
		bus.Publish(e.bus, events.EntityDestroyed{ID: g.ID(), Name: g.Name(), Tag: g.Tag()})
	})
	e.scenes = scene.NewStack(e.registry, e.bus, l)

	e.runner = systems.NewRunner(l)
	e.runner.Register(behaviour.New(e.scenes))
	e.runner.Register(animation.New(e.scenes))
	if cfg.Physics.Enabled {
		e.physics = physics.NewManager(e.scenes, e.registry, e.bus, l)
		e.runner.Register(e.physics)
	}
	if cfg.Audio.Enabled {
		e.audio = audio.NewManager(e.scenes, audio.Options{
			SampleRate: cfg.Audio.SampleRate,
			Quality:    cfg.Audio.Quality,
			Drain:      cfg.Audio.Drain,
			Loader:     e.loader,
			Log:        l,
		})
		e.runner.Register(e.audio)
	}
	if cfg.Render.Enabled && e.screen != nil {
		e.renderer = render.New(e.screen, e.scenes, render.Options{
			CellSize:      cfg.Render.CellSize,
			ShowFPS:       cfg.Render.ShowFPS,
			ShowColliders: cfg.Render.ShowColliders,
			Log:           l,
		})
		e.runner.Register(e.renderer)
	}

	e.log.Info("engine created",
		log.String("title", cfg.Engine.Title),
		log.Int("target_fps", cfg.Engine.TargetFPS),
		log.Bool("physics", e.physics != nil),
		log.Bool("audio", e.audio != nil),
		log.Bool("render", e.renderer != nil))
	return e, nil
}

func (e *Engine) Config() config.Config      { return e.cfg }
func (e *Engine) Registry() *models.Registry { return e.registry }
func (e *Engine) Bus() *bus.Bus              { return e.bus }
func (e *Engine) Runner() *systems.Runner    { return e.runner }
func (e *Engine) Frame() int64               { return e.frame }
func (e *Engine) FPS() float64               { return e.fps }
func (e *Engine) Closed() bool               { return e.closed }
func (e *Engine) Scenes() *scene.Stack       { return e.scenes }
func (e *Engine) Physics() *physics.Manager  { return e.physics }
func (e *Engine) Audio() *audio.Manager      { return e.audio }
func (e *Engine) Renderer() *render.Renderer { return e.renderer }
func (e *Engine) Log() log.Log               { return e.log }

// Post queues fn to run on the loop goroutine at the start of the next frame.
// It is safe for concurrent use and reports false when the queue is full.
func (e *Engine) Post(fn func(*Engine)) bool {
	select {
	case e.inbox <- fn:
		return true
	default:
		return false
	}
}

// PushScene makes s the top scene. Called during a frame, the push happens
// once the frame's systems have run.
func (e *Engine) PushScene(s scene.Scene) error {
	return e.schedule("push scene", func() error {
		if err := e.scenes.Push(s); err != nil {
			return err
		}
		e.preload()
		return nil
	})
}

// PopScene tears down the top scene. Deferred like PushScene.
func (e *Engine) PopScene() error {
	return e.schedule("pop scene", func() error {
		_, err := e.scenes.Pop()
		return err
	})
}

func (e *Engine) PeekScene() (scene.Scene, bool) { return e.scenes.Peek() }

// TransitionToScene pushes a transition scene that stays on top for d, then
// gets replaced by next. tick receives the progress and may be nil.
func (e *Engine) TransitionToScene(next scene.Scene, d time.Duration, tick func(progress float64)) (*scene.Transition, error) {
	t := scene.NewTransition(d, next, tick)
	t.OnDone(func(t *scene.Transition) {
		bus.Publish(e.bus, events.TransitionDone{Transition: t.Name(), Next: t.Next().Name()})
		e.pending = append(e.pending, func() error {
			if top, ok := e.scenes.Peek(); !ok || top != t {
				return nil
			}
			if err := e.scenes.Replace(t.Next()); err != nil {
				return err
			}
			e.preload()
			return nil
		})
	})
	if err := e.PushScene(t); err != nil {
		return nil, err
	}
	return t, nil
}

// preload decodes the audio clips of the new top scene up front. A clip that
// fails here fails again, and is logged, when its source plays.
func (e *Engine) preload() {
	if e.audio == nil {
		return
	}
	if err := e.audio.Preload(context.Background()); err != nil {
		e.log.Warn("audio preload failed", log.Error(err))
	}
}

func (e *Engine) ToggleFPS() bool {
	if e.renderer == nil {
		return false
	}
	return e.renderer.ToggleFPS()
}

func (e *Engine) ToggleColliders() bool {
	if e.renderer == nil {
		return false
	}
	return e.renderer.ToggleColliders()
}

func (e *Engine) schedule(what string, op func() error) error {
	if e.closed {
		return ErrClosed
	}
	if e.stepping {
		e.pending = append(e.pending, func() error {
			if err := op(); err != nil {
				return fmt.Errorf("%s: %w", what, err)
			}
			return nil
		})
		return nil
	}
	if err := op(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// Step runs one frame: queued posts, every system in phase order, then the
// scene operations requested during the frame.
func (e *Engine) Step(dt time.Duration) {
	if e.closed {
		return
	}
	e.drain()
	if e.closed {
		return
	}

	e.stepping = true
	e.runner.Tick(dt)
	e.stepping = false
	e.flush()
	if e.closed {
		return
	}

	e.frame++
	if dt > 0 {
		current := float64(time.Second) / float64(dt)
		if e.fps == 0 {
			e.fps = current
		} else {
			e.fps += fpsSmoothing * (current - e.fps)
		}
	}
	if e.renderer != nil {
		e.renderer.SetFPS(e.fps)
	}
	bus.Publish(e.bus, events.FrameCompleted{Frame: e.frame, Delta: dt, FPS: e.fps})
}

func (e *Engine) drain() {
	for {
		select {
		case fn := <-e.inbox:
			fn(e)
		default:
			return
		}
	}
}

// flush runs pending scene operations, including the ones they queue. Once
// one of them shut the engine down, the rest are dropped.
func (e *Engine) flush() {
	for len(e.pending) > 0 {
		ops := e.pending
		e.pending = nil
		for _, op := range ops {
			if e.closed {
				return
			}
			if err := op(); err != nil {
				e.log.Error("deferred scene operation failed", log.Error(err))
			}
		}
	}
}

// Run steps frames at the configured target rate until ctx is cancelled,
// Shutdown is called or the configured frame limit is reached.
func (e *Engine) Run(ctx context.Context) error {
	if e.closed {
		return ErrClosed
	}
	if e.running {
		return ErrRunning
	}
	e.running = true
	defer func() { e.running = false }()

	ctx, e.stop = context.WithCancel(ctx)
	defer e.stop()

	interval := time.Second / time.Duration(e.cfg.Engine.TargetFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info("engine loop started", log.Duration("interval", interval))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine loop stopped", log.Int64("frames", e.frame))
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			e.Step(dt)
			if e.closed {
				return nil
			}
			if limit := e.cfg.Engine.MaxFrames; limit > 0 && e.frame >= limit {
				e.log.Info("frame limit reached", log.Int64("frames", e.frame))
				return nil
			}
		}
	}
}

// Shutdown pops every scene, releases audio and drops every bus handler.
// It is idempotent; a running loop returns after the current frame. Called
// during a frame, it takes effect once the frame's systems have run.
func (e *Engine) Shutdown() {
	if e.closed {
		return
	}
	if e.stepping {
		e.pending = append(e.pending, func() error {
			e.Shutdown()
			return nil
		})
		return
	}
	if e.stop != nil {
		e.stop()
	}
	e.pending = nil
	e.scenes.Clear()
	if e.physics != nil {
		e.physics.ResetWorld()
	}
	if e.audio != nil {
		e.audio.Close()
	}
	e.registry.Clear()
	e.bus.UnregisterAll()
	e.closed = true
	e.log.Info("engine shut down", log.Int64("frames", e.frame))
}
