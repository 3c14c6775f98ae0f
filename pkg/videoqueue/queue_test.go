package videoqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeue(t *testing.T) {
	q := New[string]()

	_, ok := q.Peek()
	assert.False(t, ok, "peek on empty queue must report nothing")
	_, ok = q.Dequeue()
	assert.False(t, ok, "dequeue on empty queue must report nothing")

	q.Enqueue("b")
	q.Enqueue("c")
	q.AddToBeginning("a")
	assert.Equal(t, []string{"a", "b", "c"}, q.ToArray())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", head)
	assert.Equal(t, 3, q.Len(), "peek must not remove")

	head, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", head)
	assert.Equal(t, []string{"b", "c"}, q.ToArray())
}

func TestRemoveItemAt(t *testing.T) {
	q := New("a", "b", "c")

	require.NoError(t, q.RemoveItemAt(1))
	assert.Equal(t, []string{"a", "c"}, q.ToArray())

	assert.ErrorIs(t, q.RemoveItemAt(2), ErrOutOfBounds)
	assert.ErrorIs(t, q.RemoveItemAt(-1), ErrOutOfBounds)
	assert.Equal(t, []string{"a", "c"}, q.ToArray())
}

func TestMoveItem(t *testing.T) {
	q := New("a", "b", "c")

	require.NoError(t, q.MoveItem("a", 2))
	assert.Equal(t, []string{"b", "c", "a"}, q.ToArray())

	require.NoError(t, q.MoveItem("a", 0))
	assert.Equal(t, []string{"a", "b", "c"}, q.ToArray())

	require.NoError(t, q.MoveItem("b", 1))
	assert.Equal(t, []string{"a", "b", "c"}, q.ToArray(), "moving to its own index is a no-op")
}

func TestMoveItemErrors(t *testing.T) {
	q := New("a", "b", "c")

	assert.ErrorIs(t, q.MoveItem("a", 3), ErrOutOfBounds)
	assert.ErrorIs(t, q.MoveItem("a", -1), ErrOutOfBounds)
	assert.ErrorIs(t, q.MoveItem("x", 0), ErrNotFound)
	assert.Equal(t, []string{"a", "b", "c"}, q.ToArray(), "failed moves must not mutate the queue")
}

func TestToArrayIsSnapshot(t *testing.T) {
	q := New("a", "b")

	snapshot := q.ToArray()
	snapshot[0] = "z"
	assert.Equal(t, []string{"a", "b"}, q.ToArray())

	assert.NotNil(t, New[string]().ToArray(), "empty snapshot must encode as an empty array")
}

func TestMoveItemAtWithDuplicates(t *testing.T) {
	q := New("a", "b", "a")

	require.NoError(t, q.MoveItemAt(2, 1))
	assert.Equal(t, []string{"a", "a", "b"}, q.ToArray())

	assert.ErrorIs(t, q.MoveItemAt(3, 0), ErrOutOfBounds)
	assert.Equal(t, []string{"a", "a", "b"}, q.ToArray())
}
