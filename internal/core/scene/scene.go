package scene

import (
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/systems/behaviour"
	"github.com/zeusync/spic/pkg/sequence"
)

// Scene is a set of root entities that is pushed on and popped off the
// engine's scene stack as a unit.
type Scene interface {
	ID() uuid.UUID
	Name() string

	// Setup runs once, the first time the scene is pushed, and builds its
	// content in r.
	Setup(r *models.Registry) error
	// OnActivate runs whenever the scene becomes the top of the stack.
	OnActivate()
	// OnDeactivate runs whenever the scene stops being the top of the stack.
	OnDeactivate()
	// Teardown destroys every entity the scene still owns.
	Teardown()

	// Objects iterates the scene's live entities, roots first, each subtree
	// in pre-order.
	Objects() *sequence.Iterator[*models.GameObject]
}

// Builder fills a freshly set up scene.
type Builder func(s *Base) error

// Base is a complete Scene. Custom scenes embed it and override what they
// need; simple ones are built from a Builder.
type Base struct {
	id       uuid.UUID
	name     string
	build    Builder
	registry *models.Registry
	roots    []*models.GameObject
	ready    bool
}

func New(name string, build Builder) *Base {
	return &Base{
		id:    uuid.New(),
		name:  name,
		build: build,
	}
}

func (s *Base) ID() uuid.UUID  { return s.id }
func (s *Base) Name() string   { return s.name }
func (s *Base) Ready() bool    { return s.ready }
func (s *Base) String() string { return s.name }

// Registry is the registry the scene was set up in; nil before Setup.
func (s *Base) Registry() *models.Registry { return s.registry }

func (s *Base) Setup(r *models.Registry) error {
	if s.ready {
		return nil
	}
	s.registry = r
	s.ready = true
	if s.build != nil {
		return s.build(s)
	}
	return nil
}

// Spawn creates a root entity owned by the scene. Only valid after Setup.
func (s *Base) Spawn(name, tag string, layer int) *models.GameObject {
	g := s.registry.NewGameObject(name, tag, layer)
	s.roots = append(s.roots, g)
	return g
}

// Adopt makes an existing entity one of the scene's roots.
func (s *Base) Adopt(g *models.GameObject) {
	if !slices.Contains(s.roots, g) {
		s.roots = append(s.roots, g)
	}
}

// Roots returns the scene's live root entities.
func (s *Base) Roots() []*models.GameObject {
	s.prune()
	return slices.Clone(s.roots)
}

func (s *Base) Objects() *sequence.Iterator[*models.GameObject] {
	s.prune()
	roots := slices.Clone(s.roots)
	return sequence.FromSeq(func(yield func(*models.GameObject) bool) {
		for _, root := range roots {
			if !walk(root, yield) {
				return
			}
		}
	})
}

func walk(g *models.GameObject, yield func(*models.GameObject) bool) bool {
	if g.Destroyed() {
		return true
	}
	if !yield(g) {
		return false
	}
	for _, child := range g.Children() {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}

// Find returns the first live entity of the scene called name.
func (s *Base) Find(name string) (*models.GameObject, bool) {
	return s.Objects().Find(func(g *models.GameObject) bool { return g.Name() == name })
}

func (s *Base) OnActivate()   { behaviour.Activate(s) }
func (s *Base) OnDeactivate() { behaviour.Deactivate(s) }

// Teardown destroys the scene's entities. The next Setup builds it again.
func (s *Base) Teardown() {
	for _, root := range s.Roots() {
		if !root.Destroyed() {
			_ = s.registry.Destroy(root)
		}
	}
	s.roots = nil
	s.ready = false
}

// prune drops roots that were destroyed or re-parented under another entity.
func (s *Base) prune() {
	s.roots = slices.DeleteFunc(s.roots, func(g *models.GameObject) bool {
		if g.Destroyed() {
			return true
		}
		_, hasParent := g.Parent()
		return hasParent
	})
}
