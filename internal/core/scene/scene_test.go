package scene

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/events"
	"github.com/zeusync/spic/internal/core/events/bus"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/systems/behaviour"
)

type probe struct {
	components.BehaviourScript
	calls []string
}

func (p *probe) OnActivate()   { p.calls = append(p.calls, "activate") }
func (p *probe) OnDeactivate() { p.calls = append(p.calls, "deactivate") }

func level(name string, p *probe) *Base {
	return New(name, func(s *Base) error {
		root := s.Spawn(name+"-root", "", 0)
		child := s.Registry().NewGameObject(name+"-child", "", 0)
		if err := root.AddChild(child); err != nil {
			return err
		}
		if p != nil {
			return child.AddComponent(p)
		}
		return nil
	})
}

func objectNames(st *Stack) []string {
	var out []string
	for g := range st.Objects().Seq() {
		out = append(out, g.Name())
	}
	return out
}

func TestSetupRunsOnce(t *testing.T) {
	reg := models.NewRegistry()
	calls := 0
	s := New("menu", func(s *Base) error {
		calls++
		s.Spawn("title", "", 0)
		return nil
	})

	require.NoError(t, s.Setup(reg))
	require.NoError(t, s.Setup(reg))
	require.Equal(t, 1, calls)
	require.True(t, s.Ready())
	require.Len(t, s.Roots(), 1)

	g, ok := s.Find("title")
	require.True(t, ok)
	require.Same(t, reg, g.Registry())
}

func TestObjectsWalksRootsInPreOrderAndPrunes(t *testing.T) {
	reg := models.NewRegistry()
	s := level("a", nil)
	require.NoError(t, s.Setup(reg))
	extra := s.Spawn("extra", "", 0)

	var got []string
	for g := range s.Objects().Seq() {
		got = append(got, g.Name())
	}
	require.Equal(t, []string{"a-root", "a-child", "extra"}, got)

	root, _ := s.Find("a-root")
	require.NoError(t, root.AddChild(extra))
	require.Len(t, s.Roots(), 1, "re-parented roots are dropped")

	require.NoError(t, reg.Destroy(root))
	require.Empty(t, s.Roots())
	require.Zero(t, s.Objects().Count())
}

func TestStackSwitchesActiveScene(t *testing.T) {
	reg := models.NewRegistry()
	b := bus.New()
	var seen []string
	bus.Listen(b, func(e events.SceneActivated) { seen = append(seen, "+"+e.Scene) })
	bus.Listen(b, func(e events.SceneDeactivated) { seen = append(seen, "-"+e.Scene) })

	pa, pb := &probe{}, &probe{}
	a, bScene := level("a", pa), level("b", pb)
	st := NewStack(reg, b, nil)

	require.NoError(t, st.Push(a))
	require.Equal(t, []string{"a-root", "a-child"}, objectNames(st))

	require.NoError(t, st.Push(bScene))
	require.Equal(t, []string{"b-root", "b-child"}, objectNames(st))
	require.Equal(t, 2, st.Len())

	popped, err := st.Pop()
	require.NoError(t, err)
	require.Same(t, bScene, popped)
	require.Empty(t, bScene.Roots(), "popped scene is torn down")
	_, ok := reg.Find("b-root")
	require.False(t, ok)

	top, ok := st.Peek()
	require.True(t, ok)
	require.Same(t, a, top)
	require.Equal(t, []string{"activate", "deactivate", "activate"}, pa.calls)
	require.Equal(t, []string{"activate", "deactivate"}, pb.calls)
	require.Equal(t, []string{"+a", "-a", "+b", "-b", "+a"}, seen)
}

func TestStackRejectsDuplicatesAndFailedSetup(t *testing.T) {
	reg := models.NewRegistry()
	st := NewStack(reg, nil, nil)
	a := level("a", nil)
	require.NoError(t, st.Push(a))
	require.ErrorIs(t, st.Push(a), ErrStacked)

	boom := errors.New("boom")
	bad := New("bad", func(*Base) error { return boom })
	require.ErrorIs(t, st.Push(bad), boom)
	require.Equal(t, 1, st.Len())

	st.Clear()
	require.Zero(t, st.Len())
	_, err := st.Pop()
	require.ErrorIs(t, err, ErrEmptyStack)
	require.Zero(t, st.Objects().Count())
}

func TestReplaceDoesNotWakeSceneBelow(t *testing.T) {
	reg := models.NewRegistry()
	p := &probe{}
	below := level("below", p)
	st := NewStack(reg, nil, nil)
	require.NoError(t, st.Push(below))

	first, second := level("first", nil), level("second", nil)
	require.NoError(t, st.Push(first))
	require.NoError(t, st.Replace(second))

	require.Equal(t, 2, st.Len())
	top, _ := st.Peek()
	require.Same(t, second, top)
	require.Empty(t, first.Roots())
	require.Equal(t, []string{"activate", "deactivate"}, p.calls)
}

func TestTransitionRunsThroughBehaviourSystem(t *testing.T) {
	reg := models.NewRegistry()
	next := level("next", nil)
	var progress []float64
	tr := NewTransition(100*time.Millisecond, next, func(p float64) { progress = append(progress, p) })
	var done *Transition
	tr.OnDone(func(t *Transition) { done = t })

	require.Equal(t, "transition:next", tr.Name())
	require.Same(t, next, tr.Next())
	require.Zero(t, tr.Progress())

	st := NewStack(reg, nil, nil)
	require.NoError(t, st.Push(tr))
	sys := behaviour.New(st)

	sys.Update(50 * time.Millisecond)
	require.Nil(t, done)
	require.InDelta(t, 0.5, tr.Progress(), 1e-9)

	sys.Update(60 * time.Millisecond)
	require.Same(t, tr, done)
	require.Equal(t, []float64{0.5, 1}, progress)

	require.NoError(t, st.Replace(tr.Next()))
	require.Equal(t, []string{"next-root", "next-child"}, objectNames(st))
}

func TestPoppedSceneIsRebuiltOnNextPush(t *testing.T) {
	reg := models.NewRegistry()
	builds := 0
	s := New("menu", func(s *Base) error {
		builds++
		s.Spawn("title", "", 0)
		return nil
	})
	st := NewStack(reg, nil, nil)

	require.NoError(t, st.Push(s))
	_, err := st.Pop()
	require.NoError(t, err)
	require.False(t, s.Ready())
	require.Empty(t, s.Roots())

	require.NoError(t, st.Push(s))
	require.Equal(t, 2, builds)
	_, ok := s.Find("title")
	require.True(t, ok)
	require.Equal(t, 1, reg.Len())
}
