package systems

import (
	"cmp"
	"slices"
	"time"

	"github.com/zeusync/spic/internal/core/observability/log"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	metrics map[string]*Metrics
	log     log.Log
}

func NewRunner(l log.Log) *Runner {
	if l == nil {
		l = log.Nop()
	}
	return &Runner{
		systems: make([]System, 0, 16),
		metrics: make(map[string]*Metrics),
		log:     l.Named("runner"),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.metrics[s.Name()] = &Metrics{}
	r.sorted = false
	r.log.Debug("system registered",
		log.String("system", s.Name()),
		log.Stringer("phase", s.Phase()))
}

// Unregister removes every system called name.
func (r *Runner) Unregister(name string) bool {
	n := len(r.systems)
	r.systems = slices.DeleteFunc(slices.Clone(r.systems), func(s System) bool {
		return s.Name() == name
	})
	delete(r.metrics, name)
	return len(r.systems) != n
}

// Systems returns the registered systems in execution order.
func (r *Runner) Systems() []System {
	r.ensureSorted()
	return slices.Clone(r.systems)
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.run(s, dt)
	}
}

// TickPhase runs only the systems of phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			r.run(s, dt)
		}
	}
}

// Metrics returns a copy of the execution metrics of the system called name.
func (r *Runner) Metrics(name string) (Metrics, bool) {
	m, ok := r.metrics[name]
	if !ok {
		return Metrics{}, false
	}
	return *m, true
}

func (r *Runner) run(s System, dt time.Duration) {
	start := time.Now()
	s.Update(dt)
	if m, ok := r.metrics[s.Name()]; ok {
		m.record(time.Since(start))
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		slices.SortStableFunc(r.systems, func(a, b System) int {
			return cmp.Compare(a.Phase(), b.Phase())
		})
		r.sorted = true
	}
}
