package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeusync/spic/internal/core/events"
	"github.com/zeusync/spic/internal/core/events/bus"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/pkg/sequence"
)

var (
	ErrStacked    = errors.New("scene already on the stack")
	ErrEmptyStack = errors.New("scene stack is empty")
)

// Stack is the engine's scene stack. Only the top scene is live: it is the
// World the systems run on.
type Stack struct {
	registry *models.Registry
	bus      *bus.Bus
	log      log.Log
	scenes   []Scene
}

func NewStack(r *models.Registry, b *bus.Bus, l log.Log) *Stack {
	if l == nil {
		l = log.Nop()
	}
	return &Stack{registry: r, bus: b, log: l.Named("scenes")}
}

func (st *Stack) Len() int { return len(st.scenes) }

// Peek returns the top scene.
func (st *Stack) Peek() (Scene, bool) {
	if len(st.scenes) == 0 {
		return nil, false
	}
	return st.scenes[len(st.scenes)-1], true
}

// Scenes returns the stack bottom first.
func (st *Stack) Scenes() []Scene { return slices.Clone(st.scenes) }

// Objects iterates the entities of the top scene.
func (st *Stack) Objects() *sequence.Iterator[*models.GameObject] {
	top, ok := st.Peek()
	if !ok {
		return sequence.From[*models.GameObject](nil)
	}
	return top.Objects()
}

// Push sets s up if needed, deactivates the current top and activates s.
func (st *Stack) Push(s Scene) error {
	if err := st.prepare(s); err != nil {
		return err
	}
	if top, ok := st.Peek(); ok {
		st.deactivate(top)
	}
	st.scenes = append(st.scenes, s)
	st.activate(s)
	return nil
}

// Pop deactivates and tears down the top scene, then activates the one below.
func (st *Stack) Pop() (Scene, error) {
	top, ok := st.Peek()
	if !ok {
		return nil, ErrEmptyStack
	}
	st.deactivate(top)
	top.Teardown()
	st.scenes = st.scenes[:len(st.scenes)-1]
	if next, ok := st.Peek(); ok {
		st.activate(next)
	}
	return top, nil
}

// Replace swaps the top scene for s without waking the scene below.
func (st *Stack) Replace(s Scene) error {
	top, ok := st.Peek()
	if !ok {
		return st.Push(s)
	}
	if err := st.prepare(s); err != nil {
		return err
	}
	st.deactivate(top)
	top.Teardown()
	st.scenes[len(st.scenes)-1] = s
	st.activate(s)
	return nil
}

// Clear pops every scene, top first.
func (st *Stack) Clear() {
	for len(st.scenes) > 0 {
		_, _ = st.Pop()
	}
}

func (st *Stack) prepare(s Scene) error {
	if slices.Contains(st.scenes, s) {
		return fmt.Errorf("push %s: %w", s.Name(), ErrStacked)
	}
	if err := s.Setup(st.registry); err != nil {
		return fmt.Errorf("set up scene %s: %w", s.Name(), err)
	}
	return nil
}

func (st *Stack) activate(s Scene) {
	s.OnActivate()
	st.log.Debug("scene activated", log.String("scene", s.Name()), log.Int("depth", len(st.scenes)))
	if st.bus != nil {
		bus.Publish(st.bus, events.SceneActivated{Scene: s.Name()})
	}
}

func (st *Stack) deactivate(s Scene) {
	s.OnDeactivate()
	st.log.Debug("scene deactivated", log.String("scene", s.Name()))
	if st.bus != nil {
		bus.Publish(st.bus, events.SceneDeactivated{Scene: s.Name()})
	}
}
