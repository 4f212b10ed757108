package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/spic/pkg/sequence"
)

// Each runs action for every element of i, at most limit at a time (no limit
// when limit <= 0). It waits for every started action and returns the first
// error; once an action failed, the remaining elements are not started.
func Each[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for value := range i.Seq() {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(ctx, value)
		})
	}
	return g.Wait()
}

// Map applies fn to every element of i with at most limit goroutines and
// returns the results in input order.
func Map[T, R any](ctx context.Context, i *sequence.Iterator[T], limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	in := i.Collect()
	out := make([]R, len(in))
	err := Each(ctx, sequence.From(indexes(len(in))), limit, func(ctx context.Context, idx int) error {
		r, err := fn(ctx, in[idx])
		if err != nil {
			return err
		}
		out[idx] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func indexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
