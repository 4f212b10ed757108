package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/spic/pkg/sequence"
)

func TestEachVisitsEveryElement(t *testing.T) {
	var sum atomic.Int64
	err := Each(context.Background(), sequence.From([]int{1, 2, 3, 4}), 2, func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 10, sum.Load())
}

func TestEachRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	err := Each(context.Background(), sequence.From(make([]int, 16)), 3, func(context.Context, int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int32(3))
}

func TestEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Each(context.Background(), sequence.From([]string{"a", "b"}), 0, func(_ context.Context, s string) error {
		if s == "b" {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestMapKeepsOrder(t *testing.T) {
	out, err := Map(context.Background(), sequence.From([]int{3, 1, 2}), 2, func(_ context.Context, v int) (int, error) {
		return v * 10, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{30, 10, 20}, out)

	_, err = Map(context.Background(), sequence.From([]int{1}), 1, func(context.Context, int) (int, error) {
		return 0, errors.New("nope")
	})
	require.Error(t, err)
}
