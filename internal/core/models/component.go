package models

import "reflect"

// Component is the capability every attachable behaviour unit implements.
// Implementations embed ComponentBase and are used through pointers; a
// component belongs to at most one GameObject for its whole lifetime.
type Component interface {
	GameObject() *GameObject
	base() *ComponentBase
}

// Attacher is implemented by components that want to know when they are
// attached to an entity.
type Attacher interface {
	OnAttach(owner *GameObject)
}

// Detacher is implemented by components that release resources when they
// are removed from their entity, either directly or by destroying the entity.
type Detacher interface {
	OnDetach()
}

// ComponentBase carries the ownership state shared by all components.
type ComponentBase struct {
	owner     *GameObject
	destroyed bool
}

// GameObject returns the owning entity, or nil before attachment and after
// removal.
func (c *ComponentBase) GameObject() *GameObject { return c.owner }

// Destroyed reports whether the component was removed from its owner.
func (c *ComponentBase) Destroyed() bool { return c.destroyed }

// Transform is a shortcut for the owner's transform; nil when detached.
func (c *ComponentBase) Transform() *Transform {
	if c.owner == nil {
		return nil
	}
	return c.owner.Transform()
}

func (c *ComponentBase) base() *ComponentBase { return c }

func isNilComponent(c Component) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
