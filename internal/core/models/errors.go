package models

import "errors"

var (
	// ErrInvalidHandle is returned when an entity handle is not registered,
	// belongs to another registry, or is not owned by the expected parent.
	ErrInvalidHandle = errors.New("invalid entity handle")
	// ErrNotFound is returned when a component is not owned by any
	// registered entity.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyOwned is returned when attaching a component or child that
	// already has an owner.
	ErrAlreadyOwned = errors.New("already owned")
	// ErrDestroyed is returned by mutating operations on a destroyed entity
	// or component.
	ErrDestroyed = errors.New("destroyed")
	// ErrCycle is returned when re-parenting would make an entity its own
	// ancestor.
	ErrCycle = errors.New("hierarchy cycle")
)
