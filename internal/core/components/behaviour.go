package components

import (
	"time"

	"github.com/zeusync/spic/internal/core/models"
)

// Behaviour is a scripted component ticked by the behaviour system.
//
// OnStart runs once, right before the first OnUpdate, and both only run while
// the owner is active in world. OnActivate and OnDeactivate follow the scene
// the owner belongs to and run regardless of activity.
type Behaviour interface {
	models.Component

	Started() bool
	SetStarted(started bool)

	OnStart()
	OnUpdate(dt time.Duration)
	OnActivate()
	OnDeactivate()
}

// TriggerReceiver is notified by the physics manager about trigger contacts
// involving any collider of its owner. other is the collider on the opposite
// side of the contact.
type TriggerReceiver interface {
	models.Component

	OnTriggerEnter2D(other Collider)
	OnTriggerStay2D(other Collider)
	OnTriggerExit2D(other Collider)
}

// BehaviourScript is the embeddable base for behaviours. Every hook is a
// no-op, so scripts only implement what they need.
type BehaviourScript struct {
	models.ComponentBase
	started bool
}

func (b *BehaviourScript) Started() bool           { return b.started }
func (b *BehaviourScript) SetStarted(started bool) { b.started = started }

func (*BehaviourScript) OnStart()                  {}
func (*BehaviourScript) OnUpdate(time.Duration)    {}
func (*BehaviourScript) OnActivate()               {}
func (*BehaviourScript) OnDeactivate()             {}
func (*BehaviourScript) OnTriggerEnter2D(Collider) {}
func (*BehaviourScript) OnTriggerStay2D(Collider)  {}
func (*BehaviourScript) OnTriggerExit2D(Collider)  {}
