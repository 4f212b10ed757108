package bus

import (
	"reflect"
	"time"
)

// HandlerID identifies one (event type, handler) binding on a Bus. Ids are
// never reused by the Bus that issued them; the zero value is never issued.
type HandlerID uint64

// Observer is notified about every publish. Implementations can export
// metrics, tracing, or logs. Observers must not publish on the bus they
// observe.
type Observer interface {
	OnPublish(eventType reflect.Type, event any)
	OnDelivered(eventType reflect.Type, handlers int, elapsed time.Duration)
}

// Metrics represents a minimal set of counters; it is updated only when at
// least one observer is registered.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Unhandled         uint64
	SubscribersActive uint64
}

// Option configures a Bus.
type Option func(*Bus)
