// Package events holds the payload types the engine publishes on its bus.
// Payloads are plain values; handlers receive copies.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EntityDestroyed is published once per entity removed from the registry,
// children before their parents.
type EntityDestroyed struct {
	ID   uuid.UUID
	Name string
	Tag  string
}

// TriggerEnter is published when two colliders start overlapping and at
// least one of them is a trigger.
type TriggerEnter struct {
	Self  uuid.UUID
	Other uuid.UUID
}

// TriggerExit is published when a previously reported overlap ends.
type TriggerExit struct {
	Self  uuid.UUID
	Other uuid.UUID
}

type SceneActivated struct {
	Scene string
}

type SceneDeactivated struct {
	Scene string
}

// TransitionDone is published by a transition scene once its timer ran out.
type TransitionDone struct {
	Transition string
	Next       string
}

// FrameCompleted is published at the end of every engine step.
type FrameCompleted struct {
	Frame int64
	Delta time.Duration
	FPS   float64
}
