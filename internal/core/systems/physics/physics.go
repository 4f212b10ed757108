package physics

import (
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/events"
	"github.com/zeusync/spic/internal/core/events/bus"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/internal/core/systems"
)

// Manager tracks trigger contacts between the colliders of the world. Each
// Update reports new contacts as enter, persisting ones as stay and vanished
// ones as exit, both to the TriggerReceivers of the two owners and on the bus.
type Manager struct {
	world    systems.World
	registry *models.Registry
	bus      *bus.Bus
	log      log.Log

	contacts []Contact
}

func NewManager(world systems.World, registry *models.Registry, b *bus.Bus, l log.Log) *Manager {
	if l == nil {
		l = log.Nop()
	}
	return &Manager{
		world:    world,
		registry: registry,
		bus:      b,
		log:      l.Named("physics"),
	}
}

func (*Manager) Name() string         { return "physics" }
func (*Manager) Phase() systems.Phase { return systems.PhasePhysics }

// Contacts returns the contacts found by the last Update.
func (m *Manager) Contacts() []Contact {
	return slices.Clone(m.contacts)
}

func (m *Manager) Update(time.Duration) {
	current := m.detect()
	previous := m.contacts
	m.contacts = current

	for _, c := range previous {
		if !contains(current, c) {
			m.dispatch(exit, c)
		}
	}
	for _, c := range current {
		if contains(previous, c) {
			m.dispatch(stay, c)
		} else {
			m.dispatch(enter, c)
		}
	}
}

func (m *Manager) detect() []Contact {
	var colliders []components.Collider
	for g := range systems.ActiveObjects(m.world).Seq() {
		colliders = append(colliders, models.GetComponents[components.Collider](g)...)
	}

	var contacts []Contact
	for i, a := range colliders {
		for _, b := range colliders[i+1:] {
			if a.GameObject() == b.GameObject() {
				continue
			}
			if !a.IsTrigger() && !b.IsTrigger() {
				continue
			}
			if a.Overlaps(b) {
				contacts = append(contacts, Contact{A: a, B: b})
			}
		}
	}
	return contacts
}

// dispatch notifies both sides. Callbacks may destroy entities, so every
// side is re-checked right before it is called.
func (m *Manager) dispatch(p phase, c Contact) {
	m.notify(p, c.A, c.B)
	m.notify(p, c.B, c.A)

	if p == stay {
		return
	}
	self, other := c.trigger()
	selfOwner, otherOwner := self.GameObject(), other.GameObject()
	if selfOwner == nil || otherOwner == nil {
		return
	}

	m.log.Debug("trigger "+p.String(),
		log.String("self", selfOwner.Name()),
		log.String("other", otherOwner.Name()))

	if m.bus == nil {
		return
	}
	switch p {
	case enter:
		bus.Publish(m.bus, events.TriggerEnter{Self: selfOwner.ID(), Other: otherOwner.ID()})
	case exit:
		bus.Publish(m.bus, events.TriggerExit{Self: selfOwner.ID(), Other: otherOwner.ID()})
	}
}

func (m *Manager) notify(p phase, self, other components.Collider) {
	owner := self.GameObject()
	if owner == nil || owner.Destroyed() {
		return
	}
	for _, r := range models.GetComponents[components.TriggerReceiver](owner) {
		if r.GameObject() != owner {
			continue
		}
		switch p {
		case enter:
			r.OnTriggerEnter2D(other)
		case stay:
			r.OnTriggerStay2D(other)
		case exit:
			r.OnTriggerExit2D(other)
		}
	}
}

// ResetWorld forgets every contact without reporting exits, typically when
// the scene changes.
func (m *Manager) ResetWorld() {
	m.contacts = nil
}

// DestroyObject drops the contacts of g's subtree silently and destroys g.
func (m *Manager) DestroyObject(g *models.GameObject) error {
	if m.registry == nil || !m.registry.Contains(g) {
		return fmt.Errorf("physics destroy %v: %w", g, models.ErrInvalidHandle)
	}
	subtree := func(c components.Collider) bool {
		for n := c.GameObject(); n != nil; n, _ = n.Parent() {
			if n == g {
				return true
			}
		}
		return false
	}
	m.contacts = slices.DeleteFunc(slices.Clone(m.contacts), func(c Contact) bool {
		return subtree(c.A) || subtree(c.B)
	})
	return m.registry.Destroy(g)
}
