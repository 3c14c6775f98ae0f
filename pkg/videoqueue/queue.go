package videoqueue

import (
	"errors"
	"slices"
)

var (
	ErrOutOfBounds = errors.New("index is out of bounds")
	ErrNotFound    = errors.New("item not found in the queue")
)

// Queue is an ordered list of pending items. It is not safe for concurrent
// use; callers serialize access.
type Queue[T comparable] struct {
	items []T
}

func New[T comparable](items ...T) *Queue[T] {
	return &Queue[T]{items: slices.Clone(items)}
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}

func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

func (q *Queue[T]) AddToBeginning(item T) {
	q.items = slices.Insert(q.items, 0, item)
}

func (q *Queue[T]) Peek() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	return q.items[0], true
}

func (q *Queue[T]) Dequeue() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	item := q.items[0]
	q.items = slices.Delete(q.items, 0, 1)

	return item, true
}

func (q *Queue[T]) RemoveItemAt(index int) error {
	if index < 0 || index >= len(q.items) {
		return ErrOutOfBounds
	}

	q.items = slices.Delete(q.items, index, index+1)

	return nil
}

// MoveItem moves the first item equal to item so that it lands at
// newPosition. Bounds are checked against the queue before removal.
func (q *Queue[T]) MoveItem(item T, newPosition int) error {
	index := slices.Index(q.items, item)
	if index == -1 {
		return ErrNotFound
	}

	return q.MoveItemAt(index, newPosition)
}

// MoveItemAt is MoveItem addressed by the item's current index.
func (q *Queue[T]) MoveItemAt(index, newPosition int) error {
	if index < 0 || index >= len(q.items) || newPosition < 0 || newPosition >= len(q.items) {
		return ErrOutOfBounds
	}

	item := q.items[index]
	q.items = slices.Delete(q.items, index, index+1)
	q.items = slices.Insert(q.items, newPosition, item)

	return nil
}

// ToArray returns a copy of the items in queue order, never nil.
func (q *Queue[T]) ToArray() []T {
	return append(make([]T, 0, len(q.items)), q.items...)
}
