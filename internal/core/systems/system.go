package systems

import (
	"time"

	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/pkg/sequence"
)

// System represents a game logic processor run once per frame by the Runner.
type System interface {
	Name() string
	Phase() Phase
	Update(dt time.Duration)
}

// World is the set of entities systems operate on, usually the scene on top
// of the stack. Iterations work on snapshots, so systems may destroy entities
// while walking them.
type World interface {
	Objects() *sequence.Iterator[*models.GameObject]
}

// ActiveObjects filters w down to the entities that are active in world at
// the moment they are visited.
func ActiveObjects(w World) *sequence.Iterator[*models.GameObject] {
	return w.Objects().Filter(func(g *models.GameObject) bool {
		return g.IsActiveInWorld()
	})
}

// Phase defines when a system runs inside a frame.
type Phase uint8

const (
	PhaseInput Phase = iota
	PhasePreUpdate
	PhaseUpdate
	PhasePostUpdate
	PhasePhysics
	PhaseAudio
	PhaseRender
	PhaseCleanup
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhasePhysics:
		return "physics"
	case PhaseAudio:
		return "audio"
	case PhaseRender:
		return "render"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	LastExecutionTime    time.Duration
}

func (m *Metrics) record(took time.Duration) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	m.MaxExecutionTime = max(m.MaxExecutionTime, took)
	m.LastExecutionTime = took
}

// Func adapts a plain function to System.
type Func struct {
	SystemName  string
	SystemPhase Phase
	Fn          func(dt time.Duration)
}

func (f Func) Name() string            { return f.SystemName }
func (f Func) Phase() Phase            { return f.SystemPhase }
func (f Func) Update(dt time.Duration) { f.Fn(dt) }
