// Package lazy provides memoized deferred computations.
package lazy

import "sync"

// Value is a value computed on first use and memoized afterwards. It is safe
// for concurrent use; the computation runs at most once.
type Value[T any] struct {
	once  sync.Once
	f     func() T
	v     T
	ready bool
	mu    sync.Mutex
}

// New returns a Value that computes f when first forced.
func New[T any](f func() T) *Value[T] {
	return &Value[T]{f: f}
}

// Ready returns a Value that has already been computed.
func Ready[T any](v T) *Value[T] {
	l := &Value[T]{v: v, ready: true}
	l.once.Do(func() {})
	return l
}

// Force computes the value if needed and returns it.
func (l *Value[T]) Force() T {
	l.once.Do(func() {
		v := l.f()
		l.mu.Lock()
		l.v, l.ready, l.f = v, true, nil
		l.mu.Unlock()
	})
	return l.v
}

// IsForced reports whether the value has been computed.
func (l *Value[T]) IsForced() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// Peek returns the value and true if it has been computed, or the zero value
// and false otherwise. It never runs the computation.
func (l *Value[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.v, l.ready
}
