package generic

import "sync"

// Pool is a typed sync.Pool.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

// NewPool creates a pool that builds values with generate. When reset is not
// nil it is applied to every value handed back through Put.
func NewPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}

// NewSlicePool pools slice buffers of capacity at least size. Returned
// buffers are zeroed and truncated so they do not pin released elements.
func NewSlicePool[E any](size int) *Pool[*[]E] {
	return NewPool(
		func() *[]E {
			s := make([]E, 0, size)
			return &s
		},
		func(s *[]E) *[]E {
			clear(*s)
			*s = (*s)[:0]
			return s
		},
	)
}
