package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	var q Queue
	assert.True(t, q.IsEmpty())

	q.Push(PendingEntry{CommandID: "a"})
	q.Push(PendingEntry{CommandID: "b"})
	q.Push(PendingEntry{CommandID: "c"})
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		e, ok := q.PopFront()
		require.True(t, ok)
		assert.Equal(t, want, e.CommandID)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueue_PopFrontEmpty(t *testing.T) {
	var q Queue
	_, ok := q.PopFront()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())

	q.Push(PendingEntry{CommandID: "x"})
	_, _ = q.PopFront()
	_, ok = q.PopFront()
	assert.False(t, ok)
	assert.True(t, q.IsEmpty())
}
