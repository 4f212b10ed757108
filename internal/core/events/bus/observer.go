package bus

import (
	"reflect"
	"time"

	"github.com/zeusync/spic/internal/core/observability/log"
)

// LogObserver writes one debug line per publish.
type LogObserver struct {
	Log log.Log
}

func (o LogObserver) OnPublish(reflect.Type, any) {}

func (o LogObserver) OnDelivered(eventType reflect.Type, handlers int, elapsed time.Duration) {
	o.Log.Debug("event published",
		log.Stringer("event", eventType),
		log.Int("handlers", handlers),
		log.Duration("elapsed", elapsed))
}
