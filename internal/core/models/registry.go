package models

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/pkg/sequence"
)

// Registry is the collection of all live entities of one session. It backs
// name, tag and type lookups and is the only place entities are destroyed.
//
// A Registry is owned by a single logical thread; it is not safe for
// concurrent use.
type Registry struct {
	objects []*GameObject
	members map[*GameObject]struct{}

	onCreated   []func(*GameObject)
	onDestroyed []func(*GameObject)

	log log.Log
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger routes registry debug output to l.
func WithRegistryLogger(l log.Log) RegistryOption {
	return func(r *Registry) {
		r.log = l.Named("registry")
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		members: make(map[*GameObject]struct{}),
		log:     log.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewGameObject constructs an active root entity and registers it in the same
// step.
func (r *Registry) NewGameObject(name, tag string, layer int) *GameObject {
	g := &GameObject{
		id:        uuid.New(),
		name:      name,
		tag:       tag,
		layer:     layer,
		active:    true,
		registry:  r,
		transform: identityTransform(),
	}
	r.objects = append(slices.Clip(r.objects), g)
	r.members[g] = struct{}{}

	r.log.Debug("game object created",
		log.String("name", name),
		log.String("tag", tag),
		log.Int("layer", layer),
		log.Stringer("id", g.id))

	for _, fn := range r.onCreated {
		fn(g)
	}
	return g
}

// OnCreated registers fn to run after every NewGameObject.
func (r *Registry) OnCreated(fn func(*GameObject)) {
	r.onCreated = append(r.onCreated, fn)
}

// OnDestroyed registers fn to run once per destroyed entity, after it left the
// registry. Children are reported before their parents.
func (r *Registry) OnDestroyed(fn func(*GameObject)) {
	r.onDestroyed = append(r.onDestroyed, fn)
}

// Contains reports whether g is a live member of this registry.
func (r *Registry) Contains(g *GameObject) bool {
	if g == nil {
		return false
	}
	_, ok := r.members[g]
	return ok
}

func (r *Registry) Len() int { return len(r.objects) }

// Objects iterates the registered entities in registration order. The
// iteration works on a snapshot, so destroying entities meanwhile is safe.
func (r *Registry) Objects() *sequence.Iterator[*GameObject] {
	return sequence.From(r.objects)
}

// All returns a copy of the registered entities in registration order.
func (r *Registry) All() []*GameObject {
	return slices.Clone(r.objects)
}

// Roots returns the registered entities without a parent.
func (r *Registry) Roots() []*GameObject {
	return r.Objects().Filter(func(g *GameObject) bool { return g.parent == nil }).Collect()
}

// Find returns the first registered entity called name.
func (r *Registry) Find(name string) (*GameObject, bool) {
	return r.Objects().Find(func(g *GameObject) bool { return g.name == name })
}

// FindByID returns the entity with the given id.
func (r *Registry) FindByID(id uuid.UUID) (*GameObject, bool) {
	return r.Objects().Find(func(g *GameObject) bool { return g.id == id })
}

// FindGameObjectsWithTag returns every registered entity tagged tag in
// registration order.
func (r *Registry) FindGameObjectsWithTag(tag string) []*GameObject {
	return r.Objects().Filter(func(g *GameObject) bool { return g.tag == tag }).Collect()
}

// FindWithTag returns the first registered entity tagged tag.
func (r *Registry) FindWithTag(tag string) (*GameObject, bool) {
	return r.Objects().Find(func(g *GameObject) bool { return g.tag == tag })
}

// FindObjectOfType returns the first match for T in registration order: the
// entity itself when it satisfies T, otherwise its first matching component.
// Entities not active in world are skipped unless includeInactive is set.
func FindObjectOfType[T any](r *Registry, includeInactive bool) (T, bool) {
	for _, g := range r.objects {
		if !includeInactive && !g.IsActiveInWorld() {
			continue
		}
		if v, ok := any(g).(T); ok {
			return v, true
		}
		if v, ok := GetComponent[T](g); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FindObjectsOfType returns every match for T in registration order.
func FindObjectsOfType[T any](r *Registry, includeInactive bool) []T {
	objects := r.Objects().Filter(func(g *GameObject) bool {
		return includeInactive || g.IsActiveInWorld()
	})
	return sequence.FlatMap(objects, func(g *GameObject) []T {
		if v, ok := any(g).(T); ok {
			return []T{v}
		}
		return GetComponents[T](g)
	}).Collect()
}

// Destroy removes g and its whole subtree. For every node the components are
// detached and destroyed (last attached first), the children are destroyed,
// the node leaves its parent's children, loses the bus subscriptions it owns
// and is removed from the registry.
//
// The handle is validated before anything is torn down: an unknown, foreign,
// or already destroyed entity yields ErrInvalidHandle and changes nothing.
func (r *Registry) Destroy(g *GameObject) error {
	if g == nil || g.registry != r || g.Destroyed() || !r.Contains(g) {
		return fmt.Errorf("destroy %v: %w", g, ErrInvalidHandle)
	}

	markDestroying(g)
	r.teardown(g)
	return nil
}

func markDestroying(g *GameObject) {
	if g.state == alive {
		g.state = destroying
	}
	for _, child := range g.children {
		markDestroying(child)
	}
}

// teardown skips nodes another teardown is already working on, which happens
// when a detach hook destroys an ancestor of the node being torn down.
func (r *Registry) teardown(g *GameObject) {
	if g.state == tearingDown || g.state == destroyed {
		return
	}
	g.state = tearingDown

	components := g.components
	g.components = nil
	for i := len(components) - 1; i >= 0; i-- {
		destroyComponent(components[i])
	}

	for _, child := range g.children {
		r.teardown(child)
	}

	if p := g.parent; p != nil {
		p.removeChildLink(g)
		g.parent = nil
	}
	g.children = nil
	g.revokeSubscriptions()

	r.remove(g)
	g.state = destroyed

	r.log.Debug("game object destroyed",
		log.String("name", g.name),
		log.Stringer("id", g.id))

	for _, fn := range r.onDestroyed {
		fn(g)
	}
}

func (r *Registry) remove(g *GameObject) {
	delete(r.members, g)
	idx := slices.Index(r.objects, g)
	if idx >= 0 {
		r.objects = slices.Delete(slices.Clone(r.objects), idx, idx+1)
	}
}

// DestroyComponent removes c from the registered entity that owns it.
func (r *Registry) DestroyComponent(c Component) error {
	if isNilComponent(c) {
		return fmt.Errorf("destroy nil component: %w", ErrNotFound)
	}
	owner, ok := r.Objects().Find(func(g *GameObject) bool {
		return c.base().owner == g
	})
	if !ok || !owner.RemoveComponent(c) {
		return fmt.Errorf("destroy component %T: %w", c, ErrNotFound)
	}
	return nil
}

// Clear destroys every root and therefore every registered entity.
func (r *Registry) Clear() {
	for _, root := range r.Roots() {
		if !root.Destroyed() {
			_ = r.Destroy(root)
		}
	}
}
