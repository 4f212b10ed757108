package components

import (
	"maps"
	"slices"
	"time"

	"github.com/zeusync/spic/internal/core/models"
)

// DefaultState is the state of an animator built from a plain frame list.
const DefaultState = "default"

// Animator cycles the owner's Sprite through the frames of its current state
// at a fixed number of frames per second.
type Animator struct {
	models.ComponentBase

	fps     int
	states  map[string][]Frame
	state   string
	index   int
	elapsed time.Duration

	playing  bool
	looping  bool
	finished bool
	flipX    bool
}

// NewAnimator builds an animator with a single state holding frames.
func NewAnimator(fps int, frames ...Frame) *Animator {
	return NewStateAnimator(fps, map[string][]Frame{DefaultState: frames}, DefaultState)
}

// NewStateAnimator builds an animator with one frame list per state. When
// initial is not a known state the alphabetically first state is used.
func NewStateAnimator(fps int, states map[string][]Frame, initial string) *Animator {
	a := &Animator{
		fps:    fps,
		states: make(map[string][]Frame, len(states)),
	}
	for name, frames := range states {
		a.states[name] = slices.Clone(frames)
	}
	if _, ok := a.states[initial]; ok {
		a.state = initial
	} else if names := slices.Sorted(maps.Keys(a.states)); len(names) > 0 {
		a.state = names[0]
	}
	return a
}

// OnAttach shows the first frame on the owner's sprite.
func (a *Animator) OnAttach(*models.GameObject) { a.sync() }

func (a *Animator) FPS() int { return a.fps }

// SetFPS changes the playback speed; non-positive values pause advancement.
func (a *Animator) SetFPS(fps int) { a.fps = fps }

// Play starts advancing frames. A sequence that finished a non-looping run
// starts over from its first frame.
func (a *Animator) Play(looping bool) {
	if a.finished {
		a.index = 0
		a.finished = false
	}
	a.playing = true
	a.looping = looping
	a.elapsed = 0
	a.sync()
}

// Stop freezes the animator on the frame currently displayed.
func (a *Animator) Stop() {
	a.playing = false
	a.elapsed = 0
}

func (a *Animator) Playing() bool { return a.playing }
func (a *Animator) Looping() bool { return a.looping }

func (a *Animator) CurrentState() string { return a.state }

// SetCurrentState switches to another state. The frame index restarts only
// when the state actually changes; unknown states are ignored.
func (a *Animator) SetCurrentState(state string) bool {
	if _, ok := a.states[state]; !ok {
		return false
	}
	if state != a.state {
		a.state = state
		a.index = 0
		a.elapsed = 0
		a.finished = false
		a.sync()
	}
	return true
}

// States returns the known state names in alphabetical order.
func (a *Animator) States() []string {
	return slices.Sorted(maps.Keys(a.states))
}

// FrameIndex is the index of the displayed frame in the current state.
func (a *Animator) FrameIndex() int { return a.index }

// Frame returns the displayed frame.
func (a *Animator) Frame() (Frame, bool) {
	frames := a.states[a.state]
	if a.index >= len(frames) {
		return Frame{}, false
	}
	return frames[a.index], true
}

func (a *Animator) FlipX() bool { return a.flipX }

// SetFlipX sets the facing of the displayed sprite.
func (a *Animator) SetFlipX(flip bool) {
	a.flipX = flip
	a.sync()
}

// Animate accumulates dt and advances one frame per elapsed frame interval.
// Looping playback wraps to the first frame; otherwise playback stops on the
// last one.
func (a *Animator) Animate(dt time.Duration) {
	frames := a.states[a.state]
	if !a.playing || a.fps <= 0 || len(frames) == 0 {
		return
	}

	interval := time.Second / time.Duration(a.fps)
	a.elapsed += dt
	for a.playing && a.elapsed >= interval {
		a.elapsed -= interval
		switch {
		case a.index+1 < len(frames):
			a.index++
		case a.looping:
			a.index = 0
		default:
			a.playing = false
			a.finished = true
			a.elapsed = 0
		}
	}
	a.sync()
}

func (a *Animator) sprite() (*Sprite, bool) {
	owner := a.GameObject()
	if owner == nil {
		return nil, false
	}
	return models.GetComponent[*Sprite](owner)
}

func (a *Animator) sync() {
	s, ok := a.sprite()
	if !ok {
		return
	}
	if f, ok := a.Frame(); ok {
		s.Frame = f
	}
	s.FlipX = a.flipX
}
