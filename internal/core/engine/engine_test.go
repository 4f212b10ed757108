package engine

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/spic/internal/config"
	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/events"
	"github.com/zeusync/spic/internal/core/events/bus"
	"github.com/zeusync/spic/internal/core/scene"
)

type counter struct {
	components.BehaviourScript
	updates  int
	onUpdate func()
}

func (c *counter) OnUpdate(time.Duration) {
	c.updates++
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Engine.TargetFPS = 500
	e, err := New(cfg, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)
	return e
}

func withCounter(name string, c *counter) *scene.Base {
	return scene.New(name, func(s *scene.Base) error {
		return s.Spawn(name+"-player", "player", 0).AddComponent(c)
	})
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.TargetFPS = 0
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestStepTicksTopSceneOnly(t *testing.T) {
	e := newEngine(t)
	var frames []events.FrameCompleted
	bus.Listen(e.Bus(), func(f events.FrameCompleted) { frames = append(frames, f) })

	below, top := &counter{}, &counter{}
	require.NoError(t, e.PushScene(withCounter("below", below)))
	require.NoError(t, e.PushScene(withCounter("top", top)))

	e.Step(10 * time.Millisecond)
	e.Step(10 * time.Millisecond)

	require.Zero(t, below.updates)
	require.Equal(t, 2, top.updates)
	require.EqualValues(t, 2, e.Frame())
	require.Len(t, frames, 2)
	require.EqualValues(t, 2, frames[1].Frame)
	require.InDelta(t, 100, e.FPS(), 1e-9)

	require.NoError(t, e.PopScene())
	e.Step(10 * time.Millisecond)
	require.Equal(t, 1, below.updates)
	_, ok := e.Registry().Find("top-player")
	require.False(t, ok)
}

func TestSceneOperationsDuringFrameAreDeferred(t *testing.T) {
	e := newEngine(t)
	next := &counter{}
	first := &counter{}
	first.onUpdate = func() {
		require.NoError(t, e.PushScene(withCounter("next", next)))
		top, _ := e.PeekScene()
		require.Equal(t, "first", top.Name())
	}
	require.NoError(t, e.PushScene(withCounter("first", first)))

	e.Step(time.Millisecond)
	top, ok := e.PeekScene()
	require.True(t, ok)
	require.Equal(t, "next", top.Name())
	require.Zero(t, next.updates)
}

func TestDestroyPublishesEntityDestroyed(t *testing.T) {
	e := newEngine(t)
	var destroyed []string
	bus.Listen(e.Bus(), func(ev events.EntityDestroyed) { destroyed = append(destroyed, ev.Name) })

	parent := e.Registry().NewGameObject("parent", "", 0)
	child := e.Registry().NewGameObject("child", "", 0)
	require.NoError(t, parent.AddChild(child))
	require.NoError(t, e.Registry().Destroy(parent))

	require.Equal(t, []string{"child", "parent"}, destroyed)
}

func TestTransitionToScene(t *testing.T) {
	e := newEngine(t)
	var done []events.TransitionDone
	bus.Listen(e.Bus(), func(ev events.TransitionDone) { done = append(done, ev) })

	next := &counter{}
	tr, err := e.TransitionToScene(withCounter("level", next), 20*time.Millisecond, nil)
	require.NoError(t, err)
	top, _ := e.PeekScene()
	require.Same(t, tr, top)

	e.Step(10 * time.Millisecond)
	require.Empty(t, done)

	e.Step(10 * time.Millisecond)
	require.Len(t, done, 1)
	require.Equal(t, "level", done[0].Next)
	top, _ = e.PeekScene()
	require.Equal(t, "level", top.Name())
	require.Equal(t, 1, e.Scenes().Len())

	e.Step(10 * time.Millisecond)
	require.Equal(t, 1, next.updates)
}

func TestPostRunsOnNextFrame(t *testing.T) {
	e := newEngine(t)
	ran := false
	require.True(t, e.Post(func(*Engine) { ran = true }))
	require.False(t, ran)
	e.Step(time.Millisecond)
	require.True(t, ran)
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.TargetFPS = 1000
	cfg.Engine.MaxFrames = 3
	e, err := New(cfg, nil)
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))
	require.EqualValues(t, 3, e.Frame())

	e.Shutdown()
	require.True(t, e.Closed())
	require.ErrorIs(t, e.Run(context.Background()), ErrClosed)
	require.ErrorIs(t, e.PushScene(scene.New("late", nil)), ErrClosed)
}

func TestRunReturnsOnCancel(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	bus.Listen(e.Bus(), func(f events.FrameCompleted) {
		if f.Frame == 2 {
			cancel()
		}
	})
	require.NoError(t, e.Run(ctx))
	require.GreaterOrEqual(t, e.Frame(), int64(2))
}

func TestShutdownDuringFrameStopsRun(t *testing.T) {
	e := newEngine(t)
	c := &counter{}
	c.onUpdate = e.Shutdown
	require.NoError(t, e.PushScene(withCounter("main", c)))

	require.NoError(t, e.Run(context.Background()))
	require.True(t, e.Closed())
	require.Equal(t, 1, c.updates)
	require.Zero(t, e.Registry().Len())
}

func TestRenderToggles(t *testing.T) {
	require.False(t, newEngine(t).ToggleFPS(), "headless engine has nothing to toggle")

	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	t.Cleanup(s.Fini)

	e := newEngine(t, WithScreen(s))
	require.NotNil(t, e.Renderer())
	require.True(t, e.ToggleFPS())
	require.True(t, e.ToggleColliders())
	require.False(t, e.ToggleColliders())
}

func TestSceneOperationsAfterShutdownInSameFrameAreDropped(t *testing.T) {
	e := newEngine(t)
	c := &counter{}
	c.onUpdate = func() {
		e.Shutdown()
		require.NoError(t, e.PushScene(withCounter("late", &counter{})))
		require.NoError(t, e.PopScene())
	}
	require.NoError(t, e.PushScene(withCounter("main", c)))

	e.Step(time.Millisecond)

	require.True(t, e.Closed())
	require.Zero(t, e.Scenes().Len())
	require.Zero(t, e.Registry().Len())
	require.Zero(t, e.Frame())
}

func TestPostedShutdownSkipsTheFrame(t *testing.T) {
	e := newEngine(t)
	c := &counter{}
	require.NoError(t, e.PushScene(withCounter("main", c)))
	var frames int
	bus.Listen(e.Bus(), func(events.FrameCompleted) { frames++ })

	require.True(t, e.Post(func(e *Engine) { e.Shutdown() }))
	e.Step(time.Millisecond)

	require.True(t, e.Closed())
	require.Zero(t, c.updates)
	require.Zero(t, frames)
	require.Zero(t, e.Frame())
}
