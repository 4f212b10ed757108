package behaviour

import (
	"time"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/systems"
)

// System ticks every Behaviour of the world: OnStart once, then OnUpdate on
// each frame, both only while the owner is active in world.
type System struct {
	world systems.World
}

func New(world systems.World) *System {
	return &System{world: world}
}

func (*System) Name() string         { return "behaviour" }
func (*System) Phase() systems.Phase { return systems.PhaseUpdate }

func (s *System) Update(dt time.Duration) {
	for g := range systems.ActiveObjects(s.world).Seq() {
		for _, b := range models.GetComponents[components.Behaviour](g) {
			if !runnable(g, b) {
				continue
			}
			if !b.Started() {
				b.SetStarted(true)
				b.OnStart()
				if !runnable(g, b) {
					continue
				}
			}
			b.OnUpdate(dt)
		}
	}
}

// runnable re-checks a behaviour taken from a snapshot: earlier callbacks of
// the same pass may have removed it, destroyed its owner or deactivated it.
func runnable(g *models.GameObject, b components.Behaviour) bool {
	return b.GameObject() == g && g.IsActiveInWorld()
}

// Activate calls OnActivate on every behaviour of world, active or not.
func Activate(world systems.World) {
	each(world, components.Behaviour.OnActivate)
}

// Deactivate calls OnDeactivate on every behaviour of world, active or not.
func Deactivate(world systems.World) {
	each(world, components.Behaviour.OnDeactivate)
}

func each(world systems.World, fn func(components.Behaviour)) {
	for g := range world.Objects().Seq() {
		for _, b := range models.GetComponents[components.Behaviour](g) {
			if b.GameObject() == g {
				fn(b)
			}
		}
	}
}
