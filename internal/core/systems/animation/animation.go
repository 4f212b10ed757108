package animation

import (
	"time"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/systems"
)

// System advances the animators of entities active in world.
type System struct {
	world systems.World
}

func New(world systems.World) *System {
	return &System{world: world}
}

func (*System) Name() string         { return "animation" }
func (*System) Phase() systems.Phase { return systems.PhasePostUpdate }

func (s *System) Update(dt time.Duration) {
	for g := range systems.ActiveObjects(s.world).Seq() {
		for _, a := range models.GetComponents[*components.Animator](g) {
			a.Animate(dt)
		}
	}
}
