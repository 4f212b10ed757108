package scene

import (
	"time"

	"github.com/zeusync/spic/internal/core/components"
)

// Transition is a scene that runs a TransitionScript for a fixed duration
// and then asks to be replaced by the next scene.
type Transition struct {
	*Base

	duration time.Duration
	next     Scene
	tick     func(progress float64)
	onDone   func(*Transition)
	script   *components.TransitionScript
}

// NewTransition builds a transition towards next. tick receives the progress
// in [0, 1] on every frame and may be nil.
func NewTransition(duration time.Duration, next Scene, tick func(progress float64)) *Transition {
	t := &Transition{
		duration: duration,
		next:     next,
		tick:     tick,
	}
	t.Base = New("transition:"+next.Name(), t.build)
	return t
}

func (t *Transition) build(s *Base) error {
	g := s.Spawn("transition", "", 0)
	t.script = components.NewTransitionScript(t.duration, t.tick, t.done)
	return g.AddComponent(t.script)
}

func (t *Transition) Next() Scene { return t.next }

func (t *Transition) Duration() time.Duration { return t.duration }

// OnDone registers the callback run once the duration has elapsed.
func (t *Transition) OnDone(fn func(*Transition)) { t.onDone = fn }

// Progress is the completed fraction; 0 before the scene is set up.
func (t *Transition) Progress() float64 {
	if t.script == nil {
		return 0
	}
	return t.script.Progress()
}

func (t *Transition) done() {
	if t.onDone != nil {
		t.onDone(t)
	}
}
