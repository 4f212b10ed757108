package physics

import (
	"slices"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
)

// Contact is an overlapping collider pair where at least one side is a
// trigger. A is the collider visited first by the detection pass that found
// it; the order carries no meaning and pairs compare unordered.
type Contact struct {
	A, B components.Collider
}

// same reports whether c and o pair the same two colliders.
func (c Contact) same(o Contact) bool {
	return (c.A == o.A && c.B == o.B) || (c.A == o.B && c.B == o.A)
}

func contains(contacts []Contact, c Contact) bool {
	return slices.ContainsFunc(contacts, c.same)
}

// Involves reports whether either side belongs to g.
func (c Contact) Involves(g *models.GameObject) bool {
	return c.A.GameObject() == g || c.B.GameObject() == g
}

// trigger returns the collider reported as Self in bus payloads.
func (c Contact) trigger() (self, other components.Collider) {
	if c.A.IsTrigger() {
		return c.A, c.B
	}
	return c.B, c.A
}

type phase uint8

const (
	enter phase = iota
	stay
	exit
)

func (p phase) String() string {
	switch p {
	case enter:
		return "enter"
	case stay:
		return "stay"
	default:
		return "exit"
	}
}
