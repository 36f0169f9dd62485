// Package pool provides a tracked object pool for reuse of frequently
// churned simulation objects such as particles and projectiles.
//
// Unlike sync.Pool it keeps explicit ownership records, so the caller
// can observe how many objects are live, and a double release is a
// detectable error instead of silent corruption. The tradeoff is that
// Pool is single-goroutine, matching the tick loop that owns it.
package pool

import "errors"

// Core pool errors
var (
	ErrNilFactory  = errors.New("pool factory must not be nil")
	ErrNotAcquired = errors.New("object is not acquired from this pool")
)

// Pool recycles objects of type T. Every object is in exactly one of
// two states at all times: available for reuse, or in use by a caller.
// The pool grows unboundedly through the factory when drained and
// never destroys objects; disposal stays with the caller.
//
// Ownership is tracked per value: acquiring two objects that compare
// equal (possible with value element types such as int) records both,
// and each release settles one of them. Pointer element types keep the
// usual one-record-per-object identity semantics.
type Pool[T comparable] struct {
	factory   func() T
	reset     func(T)
	available []T
	inUse     map[T]int
	inUseLen  int
}

// Stats reports the pool's ownership split. Total is always
// Available + InUse.
type Stats struct {
	Available int `json:"available"`
	InUse     int `json:"in_use"`
	Total     int `json:"total"`
}

// Option configures a Pool.
type Option[T comparable] func(*Pool[T])

// WithReset installs a hook run on every object as it is acquired,
// before it is handed to the caller.
func WithReset[T comparable](reset func(T)) Option[T] {
	return func(p *Pool[T]) { p.reset = reset }
}

// WithInitialSize pre-builds n objects through the factory at
// construction, so the first n acquisitions allocate nothing.
func WithInitialSize[T comparable](n int) Option[T] {
	return func(p *Pool[T]) {
		for i := 0; i < n; i++ {
			p.available = append(p.available, p.factory())
		}
	}
}

// New creates a pool backed by the given factory.
func New[T comparable](factory func() T, opts ...Option[T]) (*Pool[T], error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	p := &Pool[T]{
		factory: factory,
		inUse:   make(map[T]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Acquire hands out an object, reusing the most recently released one
// when available and falling back to the factory otherwise. The reset
// hook, if configured, runs before the object is returned.
func (p *Pool[T]) Acquire() T {
	var obj T
	if n := len(p.available); n > 0 {
		obj = p.available[n-1]
		p.available = p.available[:n-1]
	} else {
		obj = p.factory()
	}
	p.inUse[obj]++
	p.inUseLen++
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Release returns an object to the pool. Releasing an object the pool
// does not record as in use, including releasing the same object more
// times than it was acquired, returns ErrNotAcquired and leaves the
// pool untouched.
func (p *Pool[T]) Release(obj T) error {
	n, ok := p.inUse[obj]
	if !ok {
		return ErrNotAcquired
	}
	if n == 1 {
		delete(p.inUse, obj)
	} else {
		p.inUse[obj] = n - 1
	}
	p.inUseLen--
	p.available = append(p.available, obj)
	return nil
}

// ReleaseAll returns every in-use object to the pool at once. Useful
// at scene teardown when per-object release order is irrelevant.
func (p *Pool[T]) ReleaseAll() {
	for obj, n := range p.inUse {
		for i := 0; i < n; i++ {
			p.available = append(p.available, obj)
		}
	}
	clear(p.inUse)
	p.inUseLen = 0
}

// Stats returns the current ownership counts.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Available: len(p.available),
		InUse:     p.inUseLen,
		Total:     len(p.available) + p.inUseLen,
	}
}
