// Package list implements persistent list.
package list

// List is a persistent singly linked list. The zero value is not usable; start
// from Empty.
type List[T any] struct {
	first T
	rest  *List[T]
	count int
}

// Empty returns an empty list.
func Empty[T any]() *List[T] {
	return &List[T]{}
}

// Len returns the number of values in the list.
func (l *List[T]) Len() int {
	return l.count
}

// IsEmpty reports whether the list has no values.
func (l *List[T]) IsEmpty() bool {
	return l.count == 0
}

// Cons returns a new list with an additional value in the front.
func (l *List[T]) Cons(val T) *List[T] {
	return &List[T]{val, l, l.count + 1}
}

// First returns the first value in the list. It panics on an empty list.
func (l *List[T]) First() T {
	if l.count == 0 {
		panic("list: First of empty list")
	}
	return l.first
}

// Rest returns the list after the first value. The Rest of an empty list is
// itself.
func (l *List[T]) Rest() *List[T] {
	if l.count == 0 {
		return l
	}
	return l.rest
}

// Slice returns the values from front to back.
func (l *List[T]) Slice() []T {
	s := make([]T, 0, l.count)
	for ; l.count > 0; l = l.rest {
		s = append(s, l.first)
	}
	return s
}

// Reversed returns the values from back to front. For a list built by
// repeated Cons, this is the order in which the values were added.
func (l *List[T]) Reversed() []T {
	s := make([]T, l.count)
	i := l.count - 1
	for ; l.count > 0; l = l.rest {
		s[i] = l.first
		i--
	}
	return s
}
