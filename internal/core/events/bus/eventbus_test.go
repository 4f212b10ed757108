package bus

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type playerDied struct {
	Name string
}

type scoreChanged struct {
	Score int
}

type testObserver struct {
	publishCount   int
	deliveredCount int
}

func (o *testObserver) OnPublish(reflect.Type, any) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ reflect.Type, handlers int, _ time.Duration) {
	o.deliveredCount += handlers
}

func TestPublishInvokesHandlersInRegistrationOrder(t *testing.T) {
	b := New()
	var calls []string

	Listen(b, func(e playerDied) { calls = append(calls, "h1:"+e.Name) })
	Listen(b, func(e playerDied) { calls = append(calls, "h2:"+e.Name) })

	n := Publish(b, playerDied{Name: "bob"})
	require.Equal(t, 2, n)
	require.Equal(t, []string{"h1:bob", "h2:bob"}, calls)
}

func TestPublishWithoutHandlersIsNoop(t *testing.T) {
	b := New()
	Listen(b, func(playerDied) { t.Fatal("wrong type delivered") })

	require.Equal(t, 0, Publish(b, scoreChanged{Score: 3}))
}

func TestDispatchIsKeyedByExactType(t *testing.T) {
	type alias = playerDied
	type named playerDied

	b := New()
	got := 0
	Listen(b, func(alias) { got++ })

	Publish(b, named{Name: "x"})
	require.Zero(t, got)
	Publish(b, playerDied{Name: "x"})
	require.Equal(t, 1, got)
}

func TestUnregisterRemovesExactlyOneBinding(t *testing.T) {
	b := New()
	var calls []string

	h1 := Listen(b, func(playerDied) { calls = append(calls, "h1") })
	Listen(b, func(playerDied) { calls = append(calls, "h2") })

	require.True(t, b.Unregister(h1))
	Publish(b, playerDied{})
	require.Equal(t, []string{"h2"}, calls)
	require.Equal(t, 1, Count[playerDied](b))
}

func TestUnregisterUnknownIsNoop(t *testing.T) {
	b := New()
	id := Listen(b, func(playerDied) {})

	require.False(t, b.Unregister(id+100))
	require.True(t, b.Unregister(id))
	require.False(t, b.Unregister(id))
	require.Zero(t, b.Len())
}

func TestUnregisterAll(t *testing.T) {
	b := New()
	id := Listen(b, func(playerDied) { t.Fatal("should be removed") })
	Listen(b, func(scoreChanged) { t.Fatal("should be removed") })

	b.UnregisterAll()
	require.Zero(t, b.Len())
	require.False(t, b.Registered(id))
	require.Zero(t, Publish(b, playerDied{}))
	require.Zero(t, Publish(b, scoreChanged{}))

	next := Listen(b, func(playerDied) {})
	require.Greater(t, next, id)
}

func TestUnregisterDuringDispatchSkipsLaterHandler(t *testing.T) {
	b := New()
	var calls []string
	var h2 HandlerID

	Listen(b, func(playerDied) {
		calls = append(calls, "h1")
		b.Unregister(h2)
	})
	h2 = Listen(b, func(playerDied) { calls = append(calls, "h2") })
	Listen(b, func(playerDied) { calls = append(calls, "h3") })

	require.Equal(t, 2, Publish(b, playerDied{}))
	require.Equal(t, []string{"h1", "h3"}, calls)
}

func TestListenDuringDispatchWaitsForNextPublish(t *testing.T) {
	b := New()
	late := 0

	Listen(b, func(playerDied) {
		Listen(b, func(playerDied) { late++ })
	})

	Publish(b, playerDied{})
	require.Zero(t, late)
	require.Equal(t, 2, Count[playerDied](b))

	Publish(b, playerDied{})
	require.Equal(t, 1, late)
}

func TestHandlerCanUnregisterItself(t *testing.T) {
	b := New()
	calls := 0
	var self HandlerID
	self = Listen(b, func(playerDied) {
		calls++
		b.Unregister(self)
	})

	Publish(b, playerDied{})
	Publish(b, playerDied{})
	require.Equal(t, 1, calls)
}

func TestNestedPublish(t *testing.T) {
	b := New()
	var order []string

	Listen(b, func(e scoreChanged) {
		order = append(order, "score")
		if e.Score > 0 {
			Publish(b, playerDied{Name: "nested"})
		}
	})
	Listen(b, func(e playerDied) { order = append(order, "died:"+e.Name) })
	Listen(b, func(scoreChanged) { order = append(order, "score2") })

	Publish(b, scoreChanged{Score: 1})
	require.Equal(t, []string{"score", "died:nested", "score2"}, order)
}

func TestUnregisterAllDuringDispatch(t *testing.T) {
	b := New()
	calls := 0
	Listen(b, func(playerDied) {
		calls++
		b.UnregisterAll()
	})
	Listen(b, func(playerDied) { calls++ })

	require.Equal(t, 1, Publish(b, playerDied{}))
	require.Equal(t, 1, calls)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	Listen(b, func(playerDied) {})
	Publish(b, playerDied{})
	require.Zero(t, b.Metrics().Published)

	obs := &testObserver{}
	b.AddObserver(obs)
	b.AddObserver(obs)
	Publish(b, playerDied{})
	Publish(b, scoreChanged{})

	m := b.Metrics()
	require.Equal(t, uint64(2), m.Published)
	require.Equal(t, uint64(1), m.DeliveredHandlers)
	require.Equal(t, uint64(1), m.Unhandled)
	require.Equal(t, uint64(1), m.SubscribersActive)
	require.Equal(t, 2, obs.publishCount)
	require.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	Publish(b, playerDied{})
	require.Equal(t, 2, obs.publishCount)
}
