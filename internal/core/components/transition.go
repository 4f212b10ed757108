package components

import "time"

// TransitionScript reports progress in [0, 1] every update until duration has
// elapsed, then calls done exactly once.
type TransitionScript struct {
	BehaviourScript

	duration time.Duration
	elapsed  time.Duration
	tick     func(progress float64)
	done     func()
	finished bool
}

// NewTransitionScript builds a transition; tick and done may be nil.
func NewTransitionScript(duration time.Duration, tick func(progress float64), done func()) *TransitionScript {
	return &TransitionScript{
		duration: duration,
		tick:     tick,
		done:     done,
	}
}

func (t *TransitionScript) OnUpdate(dt time.Duration) {
	if t.finished {
		return
	}
	t.elapsed += dt

	progress := t.Progress()
	if t.tick != nil {
		t.tick(progress)
	}
	if progress >= 1 {
		t.finished = true
		if t.done != nil {
			t.done()
		}
	}
}

func (t *TransitionScript) Progress() float64 {
	if t.duration <= 0 {
		return 1
	}
	return min(1, float64(t.elapsed)/float64(t.duration))
}

func (t *TransitionScript) Finished() bool { return t.finished }
