package models

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2    { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) Distance(o Vec2) float64 { return o.Sub(v).Len() }

// Rotate returns v rotated counter-clockwise by deg degrees.
func (v Vec2) Rotate(deg float64) Vec2 {
	if deg == 0 {
		return v
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Transform is the local position, rotation (degrees) and uniform scale of
// an entity relative to its parent.
type Transform struct {
	Position Vec2
	Rotation float64
	Scale    float64
}

func identityTransform() Transform {
	return Transform{Scale: 1}
}

// apply maps a point from this transform's local space into its parent's.
func (t Transform) apply(p Vec2) Vec2 {
	return p.Scale(t.Scale).Rotate(t.Rotation).Add(t.Position)
}
