package models

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/spic/internal/core/events/bus"
)

type lifecycle uint8

const (
	alive lifecycle = iota
	destroying
	tearingDown
	destroyed
)

type subscription struct {
	bus *bus.Bus
	id  bus.HandlerID
}

// GameObject is a named, tagged, layered node of the scene hierarchy. It owns
// its components and children; its parent is a lookup-only back reference.
//
// GameObjects are created through Registry.NewGameObject and removed through
// Registry.Destroy. Component, child and registry lists are copy-on-write,
// so a traversal that destroys entities never invalidates a snapshot taken
// before the destruction.
type GameObject struct {
	id       uuid.UUID
	name     string
	tag      string
	layer    int
	active   bool
	state    lifecycle
	registry *Registry

	parent     *GameObject
	children   []*GameObject
	components []Component
	transform  Transform

	subscriptions []subscription
}

func (g *GameObject) ID() uuid.UUID { return g.id }
func (g *GameObject) Name() string  { return g.name }
func (g *GameObject) Tag() string   { return g.tag }
func (g *GameObject) Layer() int    { return g.layer }

func (g *GameObject) String() string {
	return fmt.Sprintf("%s(%s)", g.name, g.id)
}

// Registry returns the registry the entity was created in.
func (g *GameObject) Registry() *Registry { return g.registry }

// Destroyed reports whether the entity was destroyed or is being destroyed.
func (g *GameObject) Destroyed() bool { return g.state != alive }

// Active returns the entity's own flag, ignoring its ancestors.
func (g *GameObject) Active() bool { return g.active }

// SetActive changes the entity's own flag. Descendants keep their own flags;
// their IsActiveInWorld result follows through the chain. It is a no-op once
// the entity is destroyed.
func (g *GameObject) SetActive(active bool) {
	if g.Destroyed() {
		return
	}
	g.active = active
}

// IsActiveInWorld reports whether the entity and all of its ancestors are
// active. It is recomputed on every call.
func (g *GameObject) IsActiveInWorld() bool {
	for n := g; n != nil; n = n.parent {
		if !n.active {
			return false
		}
	}
	return g.state == alive
}

// Transform returns the entity's own transform; never nil.
func (g *GameObject) Transform() *Transform { return &g.transform }

// WorldPosition maps the local position through every ancestor transform.
func (g *GameObject) WorldPosition() Vec2 {
	p := g.transform.Position
	for n := g.parent; n != nil; n = n.parent {
		p = n.transform.apply(p)
	}
	return p
}

// Components returns a copy of the attached components in attachment order.
func (g *GameObject) Components() []Component {
	return slices.Clone(g.components)
}

// AddComponent transfers ownership of c to the entity. A nil component is
// ignored. Components owned by any entity, including this one, are rejected
// with ErrAlreadyOwned; removed components cannot be reattached.
func (g *GameObject) AddComponent(c Component) error {
	if isNilComponent(c) {
		return nil
	}
	if g.Destroyed() {
		return fmt.Errorf("add component to %s: %w", g, ErrDestroyed)
	}
	b := c.base()
	if b.destroyed {
		return fmt.Errorf("add component %T to %s: %w", c, g, ErrDestroyed)
	}
	if b.owner != nil {
		return fmt.Errorf("add component %T to %s: owned by %s: %w", c, g, b.owner, ErrAlreadyOwned)
	}

	b.owner = g
	g.components = append(slices.Clip(g.components), c)
	if a, ok := c.(Attacher); ok {
		a.OnAttach(g)
	}
	return nil
}

// RemoveComponent detaches and destroys c if this entity owns it. It reports
// whether anything was removed.
func (g *GameObject) RemoveComponent(c Component) bool {
	if isNilComponent(c) || c.base().owner != g {
		return false
	}
	idx := slices.IndexFunc(g.components, func(other Component) bool {
		return other.base() == c.base()
	})
	if idx < 0 {
		return false
	}
	g.components = slices.Delete(slices.Clone(g.components), idx, idx+1)
	destroyComponent(c)
	return true
}

func destroyComponent(c Component) {
	b := c.base()
	b.owner = nil
	b.destroyed = true
	if d, ok := c.(Detacher); ok {
		d.OnDetach()
	}
}

// Children returns a copy of the owned children in insertion order.
func (g *GameObject) Children() []*GameObject {
	return slices.Clone(g.children)
}

// Parent returns the parent back reference.
func (g *GameObject) Parent() (*GameObject, bool) {
	return g.parent, g.parent != nil
}

// SetParent moves the entity under p, removing it from its previous parent's
// children and appending it to p's. A nil p makes the entity a root owned by
// the registry. Both sides of the relation change together or not at all.
func (g *GameObject) SetParent(p *GameObject) error {
	if g.Destroyed() {
		return fmt.Errorf("set parent of %s: %w", g, ErrDestroyed)
	}
	if p == g.parent {
		return nil
	}
	if p != nil {
		if p.Destroyed() {
			return fmt.Errorf("set parent of %s to %s: %w", g, p, ErrDestroyed)
		}
		if p.registry != g.registry {
			return fmt.Errorf("set parent of %s to %s: different registry: %w", g, p, ErrInvalidHandle)
		}
		for n := p; n != nil; n = n.parent {
			if n == g {
				return fmt.Errorf("set parent of %s to %s: %w", g, p, ErrCycle)
			}
		}
	}

	if old := g.parent; old != nil {
		old.removeChildLink(g)
	}
	g.parent = p
	if p != nil {
		p.children = append(slices.Clip(p.children), g)
	}
	return nil
}

// AddChild takes ownership of child. The child must not have a parent yet;
// adding a child that is already ours is a no-op.
func (g *GameObject) AddChild(child *GameObject) error {
	if child == nil {
		return fmt.Errorf("add nil child to %s: %w", g, ErrInvalidHandle)
	}
	if child.parent == g {
		return nil
	}
	if child.parent != nil {
		return fmt.Errorf("add child %s to %s: owned by %s: %w", child, g, child.parent, ErrAlreadyOwned)
	}
	return child.SetParent(g)
}

// RemoveChild releases child back to root ownership by the registry.
func (g *GameObject) RemoveChild(child *GameObject) error {
	if child == nil || child.parent != g {
		return fmt.Errorf("remove child %v from %s: %w", child, g, ErrInvalidHandle)
	}
	return child.SetParent(nil)
}

func (g *GameObject) removeChildLink(child *GameObject) {
	idx := slices.Index(g.children, child)
	if idx < 0 {
		return
	}
	g.children = slices.Delete(slices.Clone(g.children), idx, idx+1)
}

// Listen subscribes fn on b on behalf of g. The subscription is revoked when g
// is destroyed.
func Listen[T any](g *GameObject, b *bus.Bus, fn func(T)) (bus.HandlerID, error) {
	if g.Destroyed() {
		return 0, fmt.Errorf("listen on behalf of %s: %w", g, ErrDestroyed)
	}
	id := bus.Listen(b, fn)
	g.subscriptions = append(g.subscriptions, subscription{bus: b, id: id})
	return id, nil
}

func (g *GameObject) revokeSubscriptions() {
	for _, s := range g.subscriptions {
		s.bus.Unregister(s.id)
	}
	g.subscriptions = nil
}
