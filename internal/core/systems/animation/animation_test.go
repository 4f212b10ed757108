package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
)

func TestAnimatesActiveEntitiesOnly(t *testing.T) {
	r := models.NewRegistry()
	frames := []components.Frame{{Glyph: 'a'}, {Glyph: 'b'}}

	active := r.NewGameObject("active", "", 0)
	inactive := r.NewGameObject("inactive", "", 0)
	inactive.SetActive(false)

	a1 := components.NewAnimator(10, frames...)
	a2 := components.NewAnimator(10, frames...)
	require.NoError(t, active.AddComponent(a1))
	require.NoError(t, inactive.AddComponent(a2))
	a1.Play(true)
	a2.Play(true)

	sys := New(r)
	require.Equal(t, "animation", sys.Name())
	sys.Update(100 * time.Millisecond)

	require.Equal(t, 1, a1.FrameIndex())
	require.Equal(t, 0, a2.FrameIndex())
}
