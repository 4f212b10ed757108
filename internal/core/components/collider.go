package components

import (
	"math"

	"github.com/zeusync/spic/internal/core/models"
)

// Rect is an axis-aligned rectangle in world units.
type Rect struct {
	Min, Max models.Vec2
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Intersects reports whether r and o share interior points. Touching edges
// do not count.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Collider is the geometry the physics manager tests for overlaps.
type Collider interface {
	models.Component

	IsTrigger() bool
	SetTrigger(trigger bool)
	// Center is the collider's center in world space.
	Center() models.Vec2
	Bounds() Rect
	Overlaps(other Collider) bool
}

type colliderBase struct {
	models.ComponentBase

	// Offset moves the collider relative to the owner's world position.
	Offset  models.Vec2
	trigger bool
}

func (c *colliderBase) IsTrigger() bool         { return c.trigger }
func (c *colliderBase) SetTrigger(trigger bool) { c.trigger = trigger }

func (c *colliderBase) Center() models.Vec2 {
	owner := c.GameObject()
	if owner == nil {
		return c.Offset
	}
	return owner.WorldPosition().Add(c.Offset)
}

// BoxCollider is an axis-aligned box centered on its owner.
type BoxCollider struct {
	colliderBase
	Width, Height float64
}

func NewBoxCollider(width, height float64, trigger bool) *BoxCollider {
	b := &BoxCollider{Width: width, Height: height}
	b.trigger = trigger
	return b
}

func (b *BoxCollider) Bounds() Rect {
	c := b.Center()
	half := models.Vec2{X: b.Width / 2, Y: b.Height / 2}
	return Rect{Min: c.Sub(half), Max: c.Add(half)}
}

func (b *BoxCollider) Overlaps(other Collider) bool {
	switch o := other.(type) {
	case *CircleCollider:
		return circleBox(o, b)
	default:
		return b.Bounds().Intersects(other.Bounds())
	}
}

// CircleCollider is a circle centered on its owner.
type CircleCollider struct {
	colliderBase
	Radius float64
}

func NewCircleCollider(radius float64, trigger bool) *CircleCollider {
	c := &CircleCollider{Radius: radius}
	c.trigger = trigger
	return c
}

func (c *CircleCollider) Bounds() Rect {
	center := c.Center()
	r := models.Vec2{X: c.Radius, Y: c.Radius}
	return Rect{Min: center.Sub(r), Max: center.Add(r)}
}

func (c *CircleCollider) Overlaps(other Collider) bool {
	switch o := other.(type) {
	case *CircleCollider:
		return c.Center().Distance(o.Center()) < c.Radius+o.Radius
	case *BoxCollider:
		return circleBox(c, o)
	default:
		return c.Bounds().Intersects(other.Bounds())
	}
}

func circleBox(c *CircleCollider, b *BoxCollider) bool {
	center := c.Center()
	r := b.Bounds()
	nearest := models.Vec2{
		X: math.Max(r.Min.X, math.Min(center.X, r.Max.X)),
		Y: math.Max(r.Min.Y, math.Min(center.Y, r.Max.Y)),
	}
	return center.Distance(nearest) < c.Radius
}
