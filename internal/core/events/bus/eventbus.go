package bus

import (
	"reflect"
	"slices"
	"time"

	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/pkg/generic"
)

// binding is one registered handler behind a uniform invoker, so the Bus
// never needs to know payload types outside of Listen and Publish.
type binding struct {
	id      HandlerID
	typ     reflect.Type
	invoke  func(any)
	removed bool
}

var snapshots = generic.NewSlicePool[*binding](8)

// Bus is an in-process typed publish/subscribe broker.
//
// Key characteristics:
// - Type-based fan-out: handlers are keyed by the static type of the payload.
// - Synchronous delivery: Publish calls handlers on the caller's goroutine,
// in registration order, before returning.
// - Re-entrant: handlers may Listen, Unregister and Publish while being
// dispatched. A handler added during a Publish is not called by that
// Publish; a handler removed during a Publish is not called afterwards.
// - Optional observability: metrics are produced only when observers are
// registered.
//
// A Bus is owned by a single logical thread and is not safe for concurrent use.
type Bus struct {
	handlers  map[reflect.Type][]*binding
	index     map[HandlerID]*binding
	lastID    HandlerID
	observers []Observer
	metrics   Metrics
	log       log.Log
}

// WithLogger routes the bus' debug output to l.
func WithLogger(l log.Log) Option {
	return func(b *Bus) {
		b.log = l.Named("bus")
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[reflect.Type][]*binding),
		index:    make(map[HandlerID]*binding),
		log:      log.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Listen registers fn for every future Publish of exactly T and returns the
// id that revokes it.
func Listen[T any](b *Bus, fn func(T)) HandlerID {
	t := reflect.TypeFor[T]()
	b.lastID++
	h := &binding{
		id:  b.lastID,
		typ: t,
		invoke: func(v any) {
			fn(v.(T))
		},
	}
	b.handlers[t] = append(b.handlers[t], h)
	b.index[h.id] = h
	b.log.Debug("handler registered",
		log.Uint64("handler", uint64(h.id)),
		log.Stringer("event", t))
	return h.id
}

// Publish delivers event to every handler currently registered for T and
// returns how many handlers were invoked. Publishing a type nobody listens
// to is a no-op.
func Publish[T any](b *Bus, event T) int {
	return b.deliver(reflect.TypeFor[T](), event)
}

// Count returns the number of live handlers bound to T.
func Count[T any](b *Bus) int {
	return len(b.handlers[reflect.TypeFor[T]()])
}

// Unregister removes the binding identified by id. Unknown or already removed
// ids are ignored; the result reports whether a binding was removed.
func (b *Bus) Unregister(id HandlerID) bool {
	h, ok := b.index[id]
	if !ok {
		return false
	}
	h.removed = true
	delete(b.index, id)

	// Copy-on-write so dispatch snapshots taken earlier stay intact.
	live := b.handlers[h.typ]
	next := make([]*binding, 0, len(live)-1)
	for _, other := range live {
		if other != h {
			next = append(next, other)
		}
	}
	if len(next) == 0 {
		delete(b.handlers, h.typ)
	} else {
		b.handlers[h.typ] = next
	}

	b.log.Debug("handler unregistered",
		log.Uint64("handler", uint64(id)),
		log.Stringer("event", h.typ))
	return true
}

// UnregisterAll removes every binding and returns the bus to its empty state.
// Ids issued before the call stay invalid.
func (b *Bus) UnregisterAll() {
	for _, h := range b.index {
		h.removed = true
	}
	b.handlers = make(map[reflect.Type][]*binding)
	b.index = make(map[HandlerID]*binding)
	b.log.Debug("all handlers unregistered")
}

// Registered reports whether id still identifies a live binding.
func (b *Bus) Registered(id HandlerID) bool {
	_, ok := b.index[id]
	return ok
}

// Len returns the number of live bindings across all event types.
func (b *Bus) Len() int {
	return len(b.index)
}

// AddObserver registers an observer to receive publish callbacks.
func (b *Bus) AddObserver(obs Observer) {
	if obs == nil || slices.Contains(b.observers, obs) {
		return
	}
	b.observers = append(b.observers, obs)
}

// RemoveObserver unregisters a previously added observer.
func (b *Bus) RemoveObserver(obs Observer) {
	b.observers = slices.DeleteFunc(slices.Clone(b.observers), func(o Observer) bool {
		return o == obs
	})
}

// Metrics returns the counters accumulated while observers were registered.
func (b *Bus) Metrics() Metrics {
	return b.metrics
}

func (b *Bus) deliver(t reflect.Type, event any) int {
	observers := b.observers
	var start time.Time
	if len(observers) > 0 {
		start = time.Now()
		for _, obs := range observers {
			obs.OnPublish(t, event)
		}
	}

	delivered := 0
	if live := b.handlers[t]; len(live) > 0 {
		buf := snapshots.Get()
		defer snapshots.Put(buf)
		*buf = append(*buf, live...)

		for _, h := range *buf {
			if h.removed {
				continue
			}
			h.invoke(event)
			delivered++
		}
	}

	if len(observers) > 0 {
		elapsed := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(t, delivered, elapsed)
		}
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(delivered)
		if delivered == 0 {
			b.metrics.Unhandled++
		}
		b.metrics.SubscribersActive = uint64(len(b.index))
	}
	return delivered
}
